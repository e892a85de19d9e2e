package usecase

import (
	"context"

	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
)

type ContactAPI interface {
	SubmitContact(ctx context.Context, m entity.ContactMessage) error
	ListContacts(ctx context.Context, page, perPage int) (entity.ContactPage, error)
}

type ContactUseCase interface {
	Submit(ctx context.Context, m entity.ContactMessage) error
	List(ctx context.Context, page int) (entity.ContactPage, error)
}

const contactsPerPage = 20

type contactUseCase struct {
	api    ContactAPI
	logger *logger.Logger
}

func NewContactUseCase(api ContactAPI, logger *logger.Logger) ContactUseCase {
	return &contactUseCase{api: api, logger: logger}
}

func (uc *contactUseCase) Submit(ctx context.Context, m entity.ContactMessage) error {
	if err := uc.api.SubmitContact(ctx, m); err != nil {
		return err
	}
	uc.logger.Info("[CONTACT] message received: %q", m.Subject)
	return nil
}

func (uc *contactUseCase) List(ctx context.Context, page int) (entity.ContactPage, error) {
	if page < 1 {
		page = 1
	}
	return uc.api.ListContacts(ctx, page, contactsPerPage)
}
