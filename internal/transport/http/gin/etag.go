package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// writeJSONWithETag writes v with a content hash ETag and answers 304 when
// the client already holds the same representation.
func writeJSONWithETag(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	sum := sha256.Sum256(b)
	tag := `W/"` + hex.EncodeToString(sum[:16]) + `"`

	c.Header("ETag", tag)
	c.Header("Cache-Control", "no-cache")
	if c.GetHeader("If-None-Match") == tag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(status, "application/json; charset=utf-8", b)
}

// versionETag is the strong ETag of a game at a given version.
func versionETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// ifMatchVersion reads the game version a mutation is conditioned on.
// A missing header or "*" yields 0, meaning any version.
func ifMatchVersion(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return 0, true
	}

	raw = strings.TrimPrefix(raw, "W/")
	v, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil || v < 1 {
		badRequest(c, "invalid If-Match")
		return 0, false
	}

	return v, true
}
