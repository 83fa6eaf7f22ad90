package constants

import userModel "scrap-collect/models/user"

// Fiber locals keys
const (
	LocalsCaller = "caller"
	LocalsClaims = "user"
)

// Role groups used by route guards
var (
	SellerRoles = []userModel.Role{userModel.RoleSeller}
	StaffRoles  = []userModel.Role{userModel.RoleStaff, userModel.RoleAdmin}
	AllRoles    = []userModel.Role{userModel.RoleSeller, userModel.RoleStaff, userModel.RoleAdmin}
)
