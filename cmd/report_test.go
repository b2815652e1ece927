package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
)

func TestReportOutcome(t *testing.T) {
	failure := errors.New("load failed")
	tests := []struct {
		name    string
		err     error
		wantErr error
		output  string
	}{
		{"success", nil, nil, ""},
		{"other error", failure, failure, ""},
		{"unknown partner", &schema.EmptyScopeError{Partner: "Gamma"}, nil, `No data for partner "Gamma"`},
		{"wrapped empty table", fmt.Errorf("overview: %w", &schema.EmptyScopeError{}), nil, "No data: the survey has no responses."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := reportOutcome(&buf, tt.err)
			assert.Equal(t, tt.wantErr, err)
			if tt.output == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.output)
			}
		})
	}
}
