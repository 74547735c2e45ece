package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	accountstore "culturecrm/internal/account/store"
	"culturecrm/pkg/requestcontext"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

type AccountServiceSuite struct {
	suite.Suite
	service *Service
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) SetupTest() {
	s.service = New(accountstore.NewInMemory())
}

func (s *AccountServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), time.Now())
}

func (s *AccountServiceSuite) TestCreate() {
	s.Run("stores a bcrypt hash, never the password", func() {
		account, err := s.service.Create(s.ctx(), CreateParams{
			Email:     "amina@example.org",
			FirstName: "Amina",
			LastName:  "Okafor",
			Password:  "correct horse",
		})
		s.Require().NoError(err)
		s.False(account.ID.IsNil())
		s.NotEqual("correct horse", account.PasswordHash)
		s.NotContains(account.PasswordHash, "correct horse")
	})

	s.Run("empty password is a validation error", func() {
		_, err := s.service.Create(s.ctx(), CreateParams{
			Email:     "jonas@example.org",
			FirstName: "Jonas",
			Password:  "   ",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.FieldsOf(err), "password")
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.Create(s.ctx(), CreateParams{
			Email:     "amina@example.org",
			FirstName: "Other",
			Password:  "whatever",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *AccountServiceSuite) TestAuthenticate() {
	_, err := s.service.Create(s.ctx(), CreateParams{
		Email:     "amina@example.org",
		FirstName: "Amina",
		Password:  "correct horse",
	})
	s.Require().NoError(err)

	s.Run("valid credentials return the account", func() {
		account, err := s.service.Authenticate(s.ctx(), "amina@example.org", "correct horse")
		s.Require().NoError(err)
		s.Equal("amina@example.org", account.Email)
	})

	s.Run("wrong password and unknown email are indistinguishable", func() {
		_, errWrong := s.service.Authenticate(s.ctx(), "amina@example.org", "wrong")
		_, errUnknown := s.service.Authenticate(s.ctx(), "ghost@example.org", "whatever")
		s.Require().Error(errWrong)
		s.Require().Error(errUnknown)
		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
		s.Equal(errWrong.Error(), errUnknown.Error())
	})
}

func (s *AccountServiceSuite) TestUpdateProfile() {
	account, err := s.service.Create(s.ctx(), CreateParams{
		Email:     "amina@example.org",
		FirstName: "Amina",
		Password:  "correct horse",
	})
	s.Require().NoError(err)

	s.Run("changes name and normalizes the new email", func() {
		updated, err := s.service.UpdateProfile(s.ctx(), account.ID, UpdateProfileParams{
			FirstName: "  Amina ",
			LastName:  "Okafor",
			Email:     "Amina.Okafor@Example.org",
		})
		s.Require().NoError(err)
		s.Equal("Amina", updated.FirstName)
		s.Equal("Okafor", updated.LastName)
		s.Equal("amina.okafor@example.org", updated.Email)
	})

	s.Run("cannot take another account's email", func() {
		_, err := s.service.Create(s.ctx(), CreateParams{
			Email:     "jonas@example.org",
			FirstName: "Jonas",
			Password:  "whatever",
		})
		s.Require().NoError(err)

		_, err = s.service.UpdateProfile(s.ctx(), account.ID, UpdateProfileParams{
			FirstName: "Amina",
			Email:     "jonas@example.org",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("blank first name is refused", func() {
		_, err := s.service.UpdateProfile(s.ctx(), account.ID, UpdateProfileParams{
			FirstName: "  ",
			Email:     "amina.okafor@example.org",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.FieldsOf(err), "first_name")
	})
}

func (s *AccountServiceSuite) TestDelete() {
	account, err := s.service.Create(s.ctx(), CreateParams{
		Email:     "amina@example.org",
		FirstName: "Amina",
		Password:  "correct horse",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx(), account.ID))

	_, err = s.service.FindByID(s.ctx(), account.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Run("deleting an unknown account is not found", func() {
		err := s.service.Delete(s.ctx(), id.NewAccountID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
