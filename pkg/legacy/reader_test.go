package legacy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
)

func TestQueryErrKeepsDriverMessage(t *testing.T) {
	cause := fmt.Errorf("Error 1146: Table 'zoea.venues' doesn't exist")
	err := queryErr("selecting venues", cause)

	assert.True(t, errors.Is(err, zmerrors.ErrQuery))
	assert.Contains(t, err.Error(), "selecting venues")
	assert.Contains(t, err.Error(), "Error 1146", "the driver's message must survive the wrap")
}
