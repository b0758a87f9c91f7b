package courseValidator

import (
	"strings"

	"courseapi/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateModule validates the module creation request
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string                 `json:"title"`
			Description string                 `json:"description"`
			CourseID    string                 `json:"course_id"`
			TopicIDs    []string               `json:"topic_ids"`
			Metadata    map[string]interface{} `json:"metadata"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) > 255 {
			errors["title"] = "Title must be at most 255 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// CreateTopic validates the topic creation request
func CreateTopic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           string   `json:"title"`
			Description     string   `json:"description"`
			ModuleID        string   `json:"module_id"`
			QuestionBankIDs []string `json:"question_bank_ids"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) > 255 {
			errors["title"] = "Title must be at most 255 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTopic", reqData)
		return c.Next()
	}
}

// ContentVersionCreate is one versioned payload in a content creation request.
type ContentVersionCreate struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Data     string                 `json:"data"`
	URL      string                 `json:"url"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateContent validates the content creation request
func CreateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TopicID  string                 `json:"topic_id"`
			Versions []ContentVersionCreate `json:"versions"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Versions) == 0 {
			errors["versions"] = "At least one content version is required!"
		}
		for _, v := range reqData.Versions {
			if strings.TrimSpace(v.Title) == "" {
				errors["versions"] = "Every content version needs a title!"
				break
			}
			if v.Data == "" && v.URL == "" {
				errors["versions"] = "Every content version needs inline data or a URL!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}
