package handler

import (
	"phonics-coach/internal/middleware"
	"phonics-coach/pkg/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID reads the authenticated account id. It writes a 401 and
// returns false when the id is missing or malformed.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(middleware.GetUserID(c))
	if err != nil {
		response.Unauthorized(c, "user not authenticated")
		return primitive.NilObjectID, false
	}
	return id, true
}
