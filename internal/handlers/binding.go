package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

// BindNestedOrFlat decodes the request body into obj. Both {"schedule": {...}} and
// the flat {...} form are accepted; when the body has the given key, only its value
// is decoded. The body is restored so later binds can read it again.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil {
		if val, ok := envelope[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}

	return json.Unmarshal(bodyBytes, obj)
}
