package auth

import "github.com/gin-gonic/gin"

const ctxIdentityKey = "identity"

// Identity is the caller as resolved from the request. The zero value is
// the guest, which may browse the catalog but not borrow.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func Guest() Identity { return Identity{} }

func (i Identity) IsGuest() bool { return i.UserID <= 0 }

// FromContext returns the identity stored by Identify, or the guest.
func FromContext(c *gin.Context) Identity {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return Guest()
	}
	id, ok := v.(Identity)
	if !ok {
		return Guest()
	}
	return id
}
