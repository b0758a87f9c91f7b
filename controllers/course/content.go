package controllers

import (
	"log"

	"courseapi/database"
	"courseapi/middleware"
	courseModels "courseapi/models/course"
	"courseapi/store"
	"courseapi/utils"
	courseValidator "courseapi/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// GetAllModules lists every module document.
func GetAllModules(c *fiber.Ctx) error {
	docs, err := database.Mongo.Modules.Find(c.Context(), bson.M{}, store.FindOptions{})
	if err != nil {
		log.Printf("Failed to list modules: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch modules")
	}
	return c.JSON(store.NormalizeDocs(docs))
}

// GetAllTopics lists every topic document.
func GetAllTopics(c *fiber.Ctx) error {
	docs, err := database.Mongo.Topics.Find(c.Context(), bson.M{}, store.FindOptions{})
	if err != nil {
		log.Printf("Failed to list topics: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch topics")
	}
	return c.JSON(store.NormalizeDocs(docs))
}

// GetAllContents lists every content document.
func GetAllContents(c *fiber.Ctx) error {
	docs, err := database.Mongo.Contents.Find(c.Context(), bson.M{}, store.FindOptions{})
	if err != nil {
		log.Printf("Failed to list contents: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch contents")
	}
	return c.JSON(store.NormalizeDocs(docs))
}

// CreateModule inserts a new module document.
func CreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string                 `json:"title"`
		Description string                 `json:"description"`
		CourseID    string                 `json:"course_id"`
		TopicIDs    []string               `json:"topic_ids"`
		Metadata    map[string]interface{} `json:"metadata"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	doc := courseModels.Module{
		Title:       reqData.Title,
		Description: reqData.Description,
		CourseID:    reqData.CourseID,
		TopicIDs:    reqData.TopicIDs,
		Metadata:    bson.M(reqData.Metadata),
	}

	id, err := database.Mongo.Modules.InsertOne(c.Context(), doc)
	if err != nil {
		log.Printf("Failed to create module: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create module")
	}

	saved, err := database.Mongo.Modules.FindByID(c.Context(), id.Hex())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create module")
	}
	return c.Status(fiber.StatusCreated).JSON(store.NormalizeDoc(saved))
}

// CreateTopic inserts a new topic document.
func CreateTopic(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTopic").(*struct {
		Title           string   `json:"title"`
		Description     string   `json:"description"`
		ModuleID        string   `json:"module_id"`
		QuestionBankIDs []string `json:"question_bank_ids"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	doc := courseModels.Topic{
		Title:           reqData.Title,
		Description:     reqData.Description,
		ModuleID:        reqData.ModuleID,
		QuestionBankIDs: reqData.QuestionBankIDs,
	}

	id, err := database.Mongo.Topics.InsertOne(c.Context(), doc)
	if err != nil {
		log.Printf("Failed to create topic: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create topic")
	}

	saved, err := database.Mongo.Topics.FindByID(c.Context(), id.Hex())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create topic")
	}
	return c.Status(fiber.StatusCreated).JSON(store.NormalizeDoc(saved))
}

// CreateContent inserts a content document with versioned payloads. Each
// version gets a generated id; URL-backed versions get a best-effort
// probe of the remote host recorded in their metadata.
func CreateContent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContent").(*struct {
		TopicID  string                                 `json:"topic_id"`
		Versions []courseValidator.ContentVersionCreate `json:"versions"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	versions := make([]courseModels.ContentVersion, 0, len(reqData.Versions))
	for _, v := range reqData.Versions {
		version := courseModels.ContentVersion{
			VersionID: uuid.NewString(),
			Type:      v.Type,
			Title:     v.Title,
			Data:      v.Data,
			URL:       v.URL,
			Metadata:  bson.M(v.Metadata),
		}
		if v.URL != "" {
			if contentType, length, ok := utils.ProbeURL(v.URL); ok {
				if version.Metadata == nil {
					version.Metadata = bson.M{}
				}
				version.Metadata["content_type"] = contentType
				version.Metadata["content_length"] = length
			}
		}
		versions = append(versions, version)
	}

	doc := courseModels.Content{
		TopicID:  reqData.TopicID,
		Versions: versions,
	}

	id, err := database.Mongo.Contents.InsertOne(c.Context(), doc)
	if err != nil {
		log.Printf("Failed to create content: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create content")
	}

	saved, err := database.Mongo.Contents.FindByID(c.Context(), id.Hex())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create content")
	}
	return c.Status(fiber.StatusCreated).JSON(store.NormalizeDoc(saved))
}
