package dto_test

import (
	"strings"
	"testing"

	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Idempotency keys are stored in varchar(128) columns; validation must stop
// anything longer before it reaches the insert.
func TestIdempotencyKeyLengthMatchesColumnWidth(t *testing.T) {
	ok := dto.CreateJobRequest{Workflow: "organize_v2", IdempotencyKey: strings.Repeat("k", 128)}
	require.NoError(t, serverutils.ValidateRequest(ok))

	tooLong := dto.CreateJobRequest{Workflow: "organize_v2", IdempotencyKey: strings.Repeat("k", 129)}
	err := serverutils.ValidateRequest(tooLong)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	stepTooLong := dto.ExecuteStepRequest{IdempotencyKey: strings.Repeat("k", 129)}
	err = serverutils.ValidateRequest(stepTooLong)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
