package permission

import "github.com/sjperalta/rentdesk-api/internal/models"

// Permission names as configured on the staff roles screen
const (
	CreateContract    = "新增專案"
	EditContract      = "編輯專案"
	DeleteContract    = "刪除專案"
	ApproveContract   = "審核專案"
	TerminateContract = "終止專案"
	RenewContract     = "續約專案"
	ViewReminders     = "查看提醒"
	SendNotification  = "發送通知"
	EditTemplates     = "編輯通知範本"
)

// Catalog lists every permission name the service gates on
func Catalog() []string {
	return []string{
		CreateContract,
		EditContract,
		DeleteContract,
		ApproveContract,
		TerminateContract,
		RenewContract,
		ViewReminders,
		SendNotification,
		EditTemplates,
	}
}

// Evaluator decides whether an actor may perform a named action
type Evaluator interface {
	HasPermission(actor *models.Actor, name string) bool
}

type evaluator struct{}

// NewEvaluator returns the standard rule: no actor denies, top account allows everything,
// otherwise the flattened permission set decides.
func NewEvaluator() Evaluator {
	return evaluator{}
}

func (evaluator) HasPermission(actor *models.Actor, name string) bool {
	return HasPermission(actor, name)
}

// HasPermission applies the rule directly
func HasPermission(actor *models.Actor, name string) bool {
	if actor == nil {
		return false
	}
	if actor.IsTopAccount {
		return true
	}
	return actor.Has(name)
}
