// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound service calls.
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
