package dto

type SendOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

type SendOTPResponse struct {
	VerificationID string `json:"verificationId"`
}

type ValidateOTPRequest struct {
	OTP            string `json:"otp"`
	PhoneNumber    string `json:"phoneNumber"`
	VerificationID string `json:"verificationId"`
}

type ValidateOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorBody é o formato de erro do backend; só message é usado.
type ErrorBody struct {
	Message string `json:"message"`
}
