package domain

const (
	MailTypeResetPassword        = "reset_password"
	MailTypeAppointmentBooked    = "appointment_booked"
	MailTypeAppointmentCancelled = "appointment_cancelled"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type AppointmentMailData struct {
	FullName     string `json:"fullName"`
	ProviderName string `json:"providerName"`
	Reference    string `json:"reference"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}
