package model

import "time"

// EventCategory classifies calendar events.
type EventCategory string

const (
	// CategoryRetreat marks retreat events, which are admin-only to create and
	// participate in catering workflows.
	CategoryRetreat EventCategory = "retreat"
	// CategoryCamp marks camp sessions.
	CategoryCamp EventCategory = "camp"
	// CategoryDayOff marks staff days off.
	CategoryDayOff EventCategory = "day-off"
	// CategoryAppointment marks individual appointments.
	CategoryAppointment EventCategory = "appointment"
	// CategoryOther is the fallback for uncategorized events.
	CategoryOther EventCategory = "other"
)

// Priority orders maintenance tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskStatus tracks maintenance task progress.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// CleanStatus is the binary state of a cleaning area.
type CleanStatus string

const (
	StatusClean   CleanStatus = "clean"
	StatusUnclean CleanStatus = "unclean"
)

// Permission is a role granted to a user.
type Permission string

const (
	PermissionAdmin       Permission = "admin"
	PermissionMaintenance Permission = "maintenance"
	PermissionCleaning    Permission = "cleaning"
	PermissionCalendar    Permission = "calendar"
	PermissionChef        Permission = "chef"
	PermissionReadOnly    Permission = "read-only"
)

// NotificationType classifies feed entries for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

// MaxTaskPhotos caps the number of embedded photos on a maintenance task.
const MaxTaskPhotos = 5

// Event is a calendar entry. StartDate and EndDate are calendar dates with the
// time component stripped to midnight; arrival and departure times are kept as
// independent HH:MM strings.
type Event struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	StartDate      time.Time     `json:"startDate"`
	EndDate        time.Time     `json:"endDate"`
	ArrivalTime    string        `json:"arrivalTime,omitempty"`
	DepartureTime  string        `json:"departureTime,omitempty"`
	Description    string        `json:"description,omitempty"`
	CreatedBy      string        `json:"createdBy"`
	Color          string        `json:"color,omitempty"`
	Category       EventCategory `json:"category"`
	CateringNeeded bool          `json:"cateringNeeded,omitempty"`
	CateringNotes  string        `json:"cateringNotes,omitempty"`
}

// MaintenanceTask is a tracked repair or upkeep item.
type MaintenanceTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Photos      []string   `json:"photos,omitempty"`
}

// CleaningTask is an area with a binary clean state.
type CleaningTask struct {
	ID          string      `json:"id"`
	Area        string      `json:"area"`
	Description string      `json:"description,omitempty"`
	Status      CleanStatus `json:"status"`
	AssignedTo  string      `json:"assignedTo,omitempty"`
	LastCleaned *time.Time  `json:"lastCleaned,omitempty"`
}

// User is a directory entry. The phone number is the login identity; the
// temporary code is a plaintext one-time credential issued at invitation or
// reset and consumed by the first successful login.
type User struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	PhoneNumber   string       `json:"phoneNumber"`
	Email         string       `json:"email,omitempty"`
	Permissions   []Permission `json:"permissions"`
	PasswordSet   bool         `json:"passwordSet,omitempty"`
	TemporaryCode string       `json:"temporaryCode,omitempty"`
}

// HasPermission reports whether the user holds the given role.
func (u User) HasPermission(p Permission) bool {
	for _, held := range u.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.HasPermission(PermissionAdmin)
}

// Notification is an entry in the shared feed. ForPermission, when set,
// restricts visibility to users holding that permission.
type Notification struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Timestamp     time.Time        `json:"timestamp"`
	Read          bool             `json:"read"`
	Type          NotificationType `json:"type"`
	Link          string           `json:"link,omitempty"`
	ForPermission Permission       `json:"forPermission,omitempty"`
}
