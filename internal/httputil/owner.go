package httputil

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OwnerIDHeader carries the authenticated owner identity. The local API is
// bound to loopback; the header is set by the device session layer, not by
// end users.
const OwnerIDHeader = "X-Owner-ID"

// OwnerID extracts the owner identity from the request headers.
func OwnerID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(OwnerIDHeader)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s header", OwnerIDHeader)
	}

	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s header: must be a UUID", OwnerIDHeader)
	}
	if ownerID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid %s header: must not be the nil UUID", OwnerIDHeader)
	}

	return ownerID, nil
}
