package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("AROT_TEST_MODE") == "" {
			_ = os.Setenv("AROT_TEST_MODE", "1")
		}
	})
}
