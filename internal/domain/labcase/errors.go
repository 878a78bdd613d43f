package labcase

import "errors"

var (
	ErrCaseNotFound           = errors.New("case not found")
	ErrInvalidAmount          = errors.New("monetary amount must be non-negative")
	ErrOverpayment            = errors.New("commission payment exceeds commission amount")
	ErrInvalidWriteOff        = errors.New("write-off amount must equal the outstanding due balance")
	ErrCommissionInconsistent = errors.New("commission already paid exceeds the commission amount")
	ErrInvalidSex             = errors.New("invalid sex value")
	ErrInvalidDeliveryStatus  = errors.New("invalid delivery status")
	ErrPatientNameRequired    = errors.New("patient name is required")
)
