package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestParsePGErrorCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	assert.Equal(t, "23505", ParsePGErrorCode(pgErr))
	// Works through wrapping, the repositories return annotated errors.
	assert.Equal(t, "23505", ParsePGErrorCode(fmt.Errorf("insert: %w", pgErr)))

	assert.Equal(t, "unknown", ParsePGErrorCode(errors.New("broken pipe")))
	assert.Equal(t, "unknown", ParsePGErrorCode(nil))
}
