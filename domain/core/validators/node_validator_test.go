package validators

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raven/domain/config"
	"raven/domain/core/schema"
)

func testValidator() *NodeValidator {
	cfg := config.DefaultDomainConfig()
	cfg.MaxFieldsPerNode = 3
	cfg.MaxStringLength = 10
	cfg.MaxListLength = 2
	return NewNodeValidator(cfg)
}

func TestValidateProperties(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]any
		field   string
		wantErr bool
	}{
		{name: "within limits", props: map[string]any{"a": "abc", "b": []string{"x"}, "c": int64(1)}},
		{name: "too many fields", props: map[string]any{"a": 1, "b": 2, "c": 3, "d": 4}, field: "*", wantErr: true},
		{name: "string too long", props: map[string]any{"a": "abcdefghijk"}, field: "a", wantErr: true},
		{name: "multibyte counted as runes", props: map[string]any{"a": "ééééé"}},
		{name: "list too long", props: map[string]any{"tags": []string{"a", "b", "c"}}, field: "tags", wantErr: true},
		{name: "list item too long", props: map[string]any{"tags": []string{"abcdefghijk"}}, field: "tags", wantErr: true},
		{name: "script", props: map[string]any{"a": "<SCRIPT>"}, field: "a", wantErr: true},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateProperties("Person", tt.props)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var fieldErr *schema.FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, schema.ReasonLimit, fieldErr.Reason)
		})
	}
}

func TestNewNodeValidator_NilConfigUsesDefaults(t *testing.T) {
	v := NewNodeValidator(nil)

	assert.NoError(t, v.ValidateProperties("Document", map[string]any{"body": strings.Repeat("a", 1000)}))
}
