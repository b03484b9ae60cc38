package handlers

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

func TestGSTINBindingTag(t *testing.T) {
	type payload struct {
		CustomerGST string `binding:"omitempty,gstin"`
	}

	if err := binding.Validator.ValidateStruct(&payload{CustomerGST: "22AAAAA0000A1Z5"}); err != nil {
		t.Fatalf("valid GSTIN rejected: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&payload{}); err != nil {
		t.Fatalf("empty GSTIN should pass omitempty: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&payload{CustomerGST: "not-a-gstin"}); err == nil {
		t.Fatal("invalid GSTIN accepted by binding")
	}
}
