package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/dendro/pkg/httputil"
)

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return httputil.Transient(errors.New("connection reset"))
		}
		return nil
	})
	fmt.Println(calls, err)
	// Output: 2 <nil>
}
