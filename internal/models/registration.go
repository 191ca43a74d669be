package models

// RegistrationStatus enumerates verification states for a registration.
type RegistrationStatus string

const (
	StatusPendingVerification RegistrationStatus = "PENDING_VERIFICATION"
	StatusVerified            RegistrationStatus = "VERIFIED"
	StatusRejected            RegistrationStatus = "REJECTED"
)

// Registration is the canonical participant record. The document store owns
// it; every spreadsheet tab is a derived view joined on ID.
type Registration struct {
	ID                string             `db:"id" json:"id"`
	Name              string             `db:"name" json:"name"`
	Email             string             `db:"email" json:"email"`
	Phone             string             `db:"phone" json:"phone"`
	Address           string             `db:"address" json:"address,omitempty"`
	State             string             `db:"state" json:"state,omitempty"`
	Age               string             `db:"age" json:"age,omitempty"`
	Grade             string             `db:"grade" json:"grade,omitempty"`
	SchoolName        string             `db:"school_name" json:"schoolName,omitempty"`
	ClassName         string             `db:"class_name" json:"className,omitempty"`
	CollegeName       string             `db:"college_name" json:"collegeName,omitempty"`
	Semester          string             `db:"semester" json:"semester,omitempty"`
	Course            string             `db:"course" json:"course,omitempty"`
	PastCourse        string             `db:"past_course" json:"pastCourse,omitempty"`
	EventTitle        string             `db:"event_title" json:"eventTitle"`
	UpiRef            string             `db:"upi_ref" json:"upiRef"`
	Status            RegistrationStatus `db:"status" json:"status"`
	EnlistedAt        FlexTime           `db:"enlisted_at" json:"enlistedAt"`
	PaymentScreenshot string             `db:"payment_screenshot" json:"paymentScreenshot"`
	IDCardURL         string             `db:"id_card_url" json:"idCardUrl,omitempty"`
}

// RegistrationFilter captures listing criteria for the admin dashboard.
type RegistrationFilter struct {
	EventTitle string
	Status     *RegistrationStatus
	Search     string
	Page       int
	PageSize   int
}
