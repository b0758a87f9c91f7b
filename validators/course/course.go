package courseValidator

import (
	"strconv"
	"strings"

	"courseapi/middleware"
	"courseapi/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// splitCSV turns "a,b" (or "[a,b]" as some clients send) into a list.
func splitCSV(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CourseList validates the listing query string and stashes the parsed
// query in locals for the controller.
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		q := &store.CourseQuery{
			Page:         int64(c.QueryInt("page", 1)),
			Limit:        int64(c.QueryInt("limit", 10)),
			Search:       strings.TrimSpace(c.Query("search")),
			Sort:         strings.TrimSpace(c.Query("sort")),
			Order:        strings.TrimSpace(c.Query("order", "asc")),
			Segment:      splitCSV(c.Query("segment")),
			Category:     splitCSV(c.Query("category")),
			SubCategory:  splitCSV(c.Query("sub_category")),
			CourseType:   splitCSV(c.Query("course_type")),
			Difficulty:   splitCSV(c.Query("difficulty")),
			DeliveryMode: splitCSV(c.Query("delivery_mode")),
			Fields:       splitCSV(c.Query("fields")),
		}

		if q.Page < 1 {
			errors["page"] = "Page must be at least 1!"
		}
		if q.Limit < 1 {
			errors["limit"] = "Limit must be at least 1!"
		}
		if q.Order != "asc" && q.Order != "desc" {
			errors["order"] = "Order must be asc or desc!"
		}

		if raw := c.Query("min_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errors["min_price"] = "min_price must be a number!"
			} else {
				q.MinPrice = &v
			}
		}
		if raw := c.Query("max_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errors["max_price"] = "max_price must be a number!"
			} else {
				q.MaxPrice = &v
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseQuery", q)
		return c.Next()
	}
}

// CourseCreate is the validated course creation payload.
type CourseCreate struct {
	CourseTitle       string                 `json:"course_title" validate:"required,min=3,max=512"`
	CourseDescription string                 `json:"course_description" validate:"max=5000"`
	Segment           string                 `json:"segment"`
	CourseType        string                 `json:"course_type"`
	DeliveryMode      string                 `json:"delivery_mode"`
	IsLocked          bool                   `json:"is_locked"`
	CourseStartDate   string                 `json:"course_start_date"`
	CourseEndDate     string                 `json:"course_end_date"`
	Metadata          map[string]interface{} `json:"metadata"`
	ModuleIDs         []string               `json:"module_ids"`
	ImageURL          string                 `json:"image_url" validate:"omitempty,url"`
	Enrollers         int64                  `json:"enrollers" validate:"gte=0"`
	Progress          int64                  `json:"progress" validate:"gte=0"`
	DifficultyLevel   string                 `json:"difficulty_level"`
	CourseDuration    string                 `json:"course_duration"`
	DisplayPrice      *DisplayPriceCreate    `json:"display_price"`
}

type DisplayPriceCreate struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

// CreateCourse validates the course creation request body.
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseCreate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseTitle = strings.TrimSpace(reqData.CourseTitle)

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			if fieldErrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range fieldErrs {
					errors[strings.ToLower(fe.Field())] = "Invalid value (" + fe.Tag() + ")"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// GetCourseDetail validates the course id path parameter.
func GetCourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "invalid_course", "Course ID is required")
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}
