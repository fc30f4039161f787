package model

const (
	RoleRider       = "rider"
	RoleStableOwner = "stable_owner"
	RoleAdmin       = "admin"
)

func IsKnownRole(role string) bool {
	switch role {
	case RoleRider, RoleStableOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string `json:"name" bson:"name"`
	Role       string `json:"role" bson:"role"`
	RankPoints int    `json:"rank_points" bson:"rank_points"`
	IsTrusted  bool   `json:"is_trusted" bson:"is_trusted"`
}
