package response

import (
	"time"

	"github.com/google/uuid"

	"academy-api/internal/usecase/commands"
	"academy-api/internal/usecase/queries"
)

type CreatedRequestResponse struct {
	RequestID uuid.UUID       `json:"requestId"`
	Code      string          `json:"code"`
	Section   SectionSnapshot `json:"section"`
}

type SectionSnapshot struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ScheduleSlot   string    `json:"scheduleSlot"`
	StartDate      time.Time `json:"startDate"`
	Capacity       int32     `json:"capacity"`
	SeatsAvailable int32     `json:"seatsAvailable"`
}

func FromCreateResult(result *commands.CreateRequestResult) *CreatedRequestResponse {
	return &CreatedRequestResponse{
		RequestID: result.RequestID,
		Code:      result.Code,
		Section: SectionSnapshot{
			ID:             result.Section.ID,
			Code:           result.Section.Code,
			Name:           result.Section.Name,
			ScheduleSlot:   result.Section.ScheduleSlot,
			StartDate:      result.Section.StartDate,
			Capacity:       result.Section.Capacity,
			SeatsAvailable: result.Section.SeatsAvailable,
		},
	}
}

type RequestResponse struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	NationalID       string     `json:"nationalId"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	BirthDate        *time.Time `json:"birthDate,omitempty"`
	Address          string     `json:"address,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	EmergencyContact string     `json:"emergencyContact,omitempty"`
	StudentID        *uuid.UUID `json:"studentId,omitempty"`
	CourseTypeID     uuid.UUID  `json:"courseTypeId"`
	SectionID        uuid.UUID  `json:"sectionId"`
	SectionCode      string     `json:"sectionCode"`
	SectionName      string     `json:"sectionName"`
	ScheduleSlot     string     `json:"scheduleSlot"`
	AmountCents      int64      `json:"amountCents"`
	PaymentMethod    string     `json:"paymentMethod"`
	ProofReference   string     `json:"proofReference"`
	ProofBank        *string    `json:"proofBank,omitempty"`
	TransferDate     *time.Time `json:"transferDate,omitempty"`
	ReceivedBy       *string    `json:"receivedBy,omitempty"`
	ProofURL         *string    `json:"proofUrl,omitempty"`
	IDDocumentURL    *string    `json:"idDocumentUrl,omitempty"`
	CertificateURL   *string    `json:"certificateUrl,omitempty"`
	PromotionID      *uuid.UUID `json:"promotionId,omitempty"`
	PromotionName    *string    `json:"promotionName,omitempty"`
	State            string     `json:"state"`
	ReviewerID       *uuid.UUID `json:"reviewerId,omitempty"`
	ReviewerNotes    *string    `json:"reviewerNotes,omitempty"`
	DecidedAt        *time.Time `json:"decidedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func FromRequestView(view *queries.RequestView) *RequestResponse {
	return &RequestResponse{
		ID:               view.ID,
		Code:             view.Code,
		NationalID:       view.NationalID,
		FirstName:        view.FirstName,
		LastName:         view.LastName,
		Email:            view.Email,
		Phone:            view.Phone,
		BirthDate:        view.BirthDate,
		Address:          view.Address,
		Gender:           view.Gender,
		EmergencyContact: view.EmergencyContact,
		StudentID:        view.StudentID,
		CourseTypeID:     view.CourseTypeID,
		SectionID:        view.SectionID,
		SectionCode:      view.SectionCode,
		SectionName:      view.SectionName,
		ScheduleSlot:     view.ScheduleSlot,
		AmountCents:      view.AmountCents,
		PaymentMethod:    view.PaymentMethod,
		ProofReference:   view.ProofReference,
		ProofBank:        view.ProofBank,
		TransferDate:     view.TransferDate,
		ReceivedBy:       view.ReceivedBy,
		ProofURL:         view.ProofURL,
		IDDocumentURL:    view.IDDocumentURL,
		CertificateURL:   view.CertificateURL,
		PromotionID:      view.PromotionID,
		PromotionName:    view.PromotionName,
		State:            view.State,
		ReviewerID:       view.ReviewerID,
		ReviewerNotes:    view.ReviewerNotes,
		DecidedAt:        view.DecidedAt,
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
	}
}

type RequestListResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	SectionCode   string    `json:"sectionCode"`
	SectionName   string    `json:"sectionName"`
	AmountCents   int64     `json:"amountCents"`
	PaymentMethod string    `json:"paymentMethod"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromRequestListItem(item *queries.RequestListItem) *RequestListResponse {
	return &RequestListResponse{
		ID:            item.ID,
		Code:          item.Code,
		FirstName:     item.FirstName,
		LastName:      item.LastName,
		SectionCode:   item.SectionCode,
		SectionName:   item.SectionName,
		AmountCents:   item.AmountCents,
		PaymentMethod: item.PaymentMethod,
		State:         item.State,
		CreatedAt:     item.CreatedAt,
	}
}

type SectionResponse struct {
	ID             uuid.UUID `json:"id"`
	CourseTypeID   uuid.UUID `json:"courseTypeId"`
	CourseTypeName string    `json:"courseTypeName"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ScheduleSlot   string    `json:"scheduleSlot"`
	StartDate      time.Time `json:"startDate"`
	Capacity       int32     `json:"capacity"`
	SeatsAvailable int32     `json:"seatsAvailable"`
}

func FromSectionView(view *queries.SectionView) *SectionResponse {
	return &SectionResponse{
		ID:             view.ID,
		CourseTypeID:   view.CourseTypeID,
		CourseTypeName: view.CourseTypeName,
		Code:           view.Code,
		Name:           view.Name,
		ScheduleSlot:   view.ScheduleSlot,
		StartDate:      view.StartDate,
		Capacity:       view.Capacity,
		SeatsAvailable: view.SeatsAvailable,
	}
}

type StateCountResponse struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}
