package authrouter

import (
	"errors"
	"net/http"

	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/engine/infra/server/router"
	"github.com/chemgate/chemgate/engine/schema"
	"github.com/gin-gonic/gin"
)

var tokenSchema = schema.New(
	schema.Field{Name: "username", Kind: schema.KindString, Required: true},
	schema.Field{Name: "password", Kind: schema.KindString, Required: true},
)

// Register wires the token issuance endpoint.
func Register(api *gin.RouterGroup, service *auth.Service) {
	api.POST("/token-auth/", obtainToken(service))
}

// obtainToken exchanges a username and password for a bearer token.
func obtainToken(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, files, err := router.FormInput(c)
		if err != nil {
			router.RespondWithError(c, http.StatusBadRequest,
				router.NewRequestError(http.StatusBadRequest, "malformed request body", err))
			return
		}
		values, report := tokenSchema.Validate(form, files)
		if report != nil {
			router.RespondValidationErrors(c, report)
			return
		}
		token, err := service.IssueToken(
			c.Request.Context(),
			values["username"].(string),
			values["password"].(string),
		)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{
					"non_field_errors": []string{"Unable to log in with provided credentials."},
				})
				return
			}
			router.RespondWithError(c, http.StatusInternalServerError,
				router.NewRequestError(http.StatusInternalServerError, "failed to issue token", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
