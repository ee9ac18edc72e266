package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// RegisterValidation makes binding errors report JSON field names
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// IsSuperAdmin reports whether the token carries the platform admin flag
func IsSuperAdmin(c *gin.Context) bool {
	return c.GetBool("super_admin")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "eqfield":
		return "Must match " + fe.Param()
	case "gt", "gte", "lt", "lte":
		return "Out of range"
	default:
		return "Invalid value"
	}
}

// bindJSON binds the body into dst. Validation problems are answered with a
// 422 listing every field; malformed JSON with a 400.
func bindJSON(c *gin.Context, dst any) bool {
	return bindWith(c, dst, c.ShouldBindJSON)
}

func bindQuery(c *gin.Context, dst any) bool {
	return bindWith(c, dst, c.ShouldBindQuery)
}

func bindWith(c *gin.Context, dst any, bind func(any) error) bool {
	err := bind(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		response.Error(c, apperror.NewValidationError(fields))
		return false
	}
	logger.FromContext(c.Request.Context()).Debug().Err(err).Msg("invalid request body")
	response.BadRequest(c, "Invalid request body")
	return false
}

// paramUUID parses a path parameter, answering 400 when it is not a UUID
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+strings.TrimSuffix(name, "_id")+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// queryBool parses an optional boolean query parameter
func queryBool(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// queryTime accepts RFC 3339 timestamps or plain dates
func queryTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	response.BadRequest(c, "Invalid "+name+" date")
	return time.Time{}, false
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// sendArtifact streams a stored file. Inline lets browsers preview PDFs and
// images instead of downloading them.
func sendArtifact(c *gin.Context, a *service.Artifact, inline bool) {
	defer a.Content.Close()
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+a.Filename+`"`)
	c.Header("Content-Type", a.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, a.Content); err != nil {
		logger.FromContext(c.Request.Context()).Warn().Err(err).Str("file", a.Filename).Msg("artifact stream interrupted")
	}
}

func sendBytes(c *gin.Context, content []byte, filename, contentType string, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}
