package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/profile"
)

type row struct {
	exists bool
	err    error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.exists
	return nil
}

type querier struct {
	row  row
	args []any
}

func (q *querier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestDirectory(t *testing.T) {
	cases := []struct {
		name    string
		row     row
		exists  bool
		wantErr error
	}{
		{"present", row{exists: true}, true, nil},
		{"absent", row{exists: false}, false, profile.ErrNotFound},
		{"db down", row{err: errors.New("conn refused")}, false, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &querier{row: tc.row}
			d := profile.NewDirectory(q)

			ok, err := d.Exists(context.Background(), "7f9c")
			if tc.row.err != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "conn refused")
				assert.Error(t, d.Require(context.Background(), "7f9c"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exists, ok)
			assert.Equal(t, []any{"7f9c"}, q.args)

			err = d.Require(context.Background(), "7f9c")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
