package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type samplePayload struct {
	Email  string `json:"email" binding:"required,email"`
	Status string `json:"post_status" binding:"required,post_status"`
	Title  string `json:"title" binding:"max=5"`
}

func TestToDetails(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&samplePayload{Email: "nope", Status: "Published", Title: "too long"})
	details := ToDetails(err)

	assert.Equal(t, "Enter a valid email address.", details["email"])
	assert.Equal(t, "must be one of: Active, Draft, Disable", details["post_status"])
	assert.Equal(t, "must be at most 5 characters long", details["title"])
}

func TestToDetailsRequired(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&samplePayload{})
	details := ToDetails(err)

	assert.Equal(t, "This field is required.", details["email"])
	assert.Equal(t, "This field is required.", details["post_status"])
	assert.Nil(t, ToDetails(nil))
}
