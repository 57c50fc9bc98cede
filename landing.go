package goSession

import "github.com/MrEthical07/goSession/session"

// Surface is the landing view chosen for a session.
type Surface string

const (
	SurfacePublic    Surface = "public"
	SurfaceAdmin     Surface = "admin"
	SurfaceModerator Surface = "moderator"
	SurfaceUser      Surface = "user"
)

// LandingFor maps a snapshot to its landing surface. Unknown roles land on the user surface.
func LandingFor(s Snapshot) Surface {
	if !s.IsAuthenticated || s.User == nil {
		return SurfacePublic
	}
	switch s.User.Role {
	case session.RoleAdmin:
		return SurfaceAdmin
	case session.RoleModerator:
		return SurfaceModerator
	default:
		return SurfaceUser
	}
}
