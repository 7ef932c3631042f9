package access

// Permission names one fine-grained action on an exchange.
type Permission string

const (
	PermEdit               Permission = "edit"
	PermDelete             Permission = "delete"
	PermAddParticipants    Permission = "add_participants"
	PermUploadDocuments    Permission = "upload_documents"
	PermSendMessages       Permission = "send_messages"
	PermViewOverview       Permission = "view_overview"
	PermViewMessages       Permission = "view_messages"
	PermViewTasks          Permission = "view_tasks"
	PermCreateTasks        Permission = "create_tasks"
	PermEditTasks          Permission = "edit_tasks"
	PermAssignTasks        Permission = "assign_tasks"
	PermViewDocuments      Permission = "view_documents"
	PermEditDocuments      Permission = "edit_documents"
	PermDeleteDocuments    Permission = "delete_documents"
	PermViewParticipants   Permission = "view_participants"
	PermManageParticipants Permission = "manage_participants"
	PermViewFinancial      Permission = "view_financial"
	PermEditFinancial      Permission = "edit_financial"
	PermViewTimeline       Permission = "view_timeline"
	PermEditTimeline       Permission = "edit_timeline"
	PermViewReports        Permission = "view_reports"
)

// AllPermissions lists every known permission in matrix column order.
var AllPermissions = []Permission{
	PermEdit, PermDelete, PermAddParticipants, PermUploadDocuments,
	PermSendMessages, PermViewOverview, PermViewMessages, PermViewTasks,
	PermCreateTasks, PermEditTasks, PermAssignTasks, PermViewDocuments,
	PermEditDocuments, PermDeleteDocuments, PermViewParticipants,
	PermManageParticipants, PermViewFinancial, PermEditFinancial,
	PermViewTimeline, PermEditTimeline, PermViewReports,
}

func allowAll() map[Permission]bool {
	row := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		row[p] = true
	}
	return row
}

func allow(perms ...Permission) map[Permission]bool {
	row := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		row[p] = true
	}
	return row
}

// defaultMatrix holds the per-role grants used when a participation carries no
// override. Clients get the self-service actions but nothing destructive or
// administrative; third parties and agencies only see the overview unless a
// participation override widens that.
var defaultMatrix = map[Role]map[Permission]bool{
	RoleAdmin:       allowAll(),
	RoleCoordinator: allowAll(),
	RoleClient: allow(
		PermEdit, PermAddParticipants, PermUploadDocuments, PermSendMessages,
		PermViewOverview, PermViewMessages, PermViewTasks, PermCreateTasks,
		PermEditTasks, PermViewDocuments, PermEditDocuments,
		PermViewParticipants, PermViewFinancial, PermViewTimeline,
		PermViewReports,
	),
	RoleThirdParty: allow(PermViewOverview),
	RoleAgency:     allow(PermViewOverview),
}

// DefaultPermission returns the matrix grant for role/perm. Total function: a
// role outside the closed enum resolves to a deny-all row, and unknown
// permission names are false, so a bad lookup can never widen access.
func DefaultPermission(role Role, perm Permission) bool {
	row, ok := defaultMatrix[role]
	if !ok {
		return false
	}
	return row[perm]
}
