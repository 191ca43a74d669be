package dto

// CreateRegistrationRequest carries the public intake form payload.
type CreateRegistrationRequest struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required"`
	Address           string `json:"address"`
	State             string `json:"state"`
	Age               string `json:"age"`
	Grade             string `json:"grade"`
	SchoolName        string `json:"schoolName"`
	ClassName         string `json:"className"`
	CollegeName       string `json:"collegeName"`
	Semester          string `json:"semester"`
	Course            string `json:"course"`
	PastCourse        string `json:"pastCourse"`
	EventTitle        string `json:"eventTitle" validate:"required,ne=UNKNOWN_EVENT"`
	UpiRef            string `json:"upiRef" validate:"required"`
	PaymentScreenshot string `json:"paymentScreenshot" validate:"required,url"`
	IDCardURL         string `json:"idCardUrl" validate:"omitempty,url"`
}

// CreateRegistrationResult returns the id assigned at intake.
type CreateRegistrationResult struct {
	ID string `json:"id"`
}

// UpdateRegistrationStatusRequest patches a registration's status. The event
// title travels with the request so the event tab resolves without a lookup.
type UpdateRegistrationStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=PENDING_VERIFICATION VERIFIED REJECTED"`
	EventTitle string `json:"eventTitle" validate:"required"`
}

// ResyncResult reports how many registrations a rebuild mirrored.
type ResyncResult struct {
	Count int `json:"count"`
}
