package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/serve/validate"
)

type input struct {
	Name   string `json:"name" validate:"required"`
	Age    int    `json:"age" validate:"min=0,max=150"`
	Status string `json:"status" validate:"oneof=active|inactive"`
}

func TestStructRequiredFails(t *testing.T) {
	err := validate.Struct(&input{Age: 30, Status: "active"})
	require.Error(t, err)
	var ve *validate.Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Fields[0].Field)
}

func TestStructBoundsAndOneOf(t *testing.T) {
	err := validate.Struct(&input{Name: "a", Age: 200, Status: "bogus"})
	require.Error(t, err)
	var ve *validate.Error
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestStructPasses(t *testing.T) {
	err := validate.Struct(&input{Name: "a", Age: 30, Status: "active"})
	assert.NoError(t, err)
}

func TestStructNilPointerNoop(t *testing.T) {
	var in *input
	assert.NoError(t, validate.Struct(in))
}
