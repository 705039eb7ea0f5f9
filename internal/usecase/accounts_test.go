package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	repo "safarsathi-service/internal/interface/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type accountsFixture struct {
	*fixture
	clock    time.Time
	codes    *repo.MemoryCodeRepository
	accounts *Accounts
}

func newAccountsFixture(t *testing.T) *accountsFixture {
	f := &accountsFixture{fixture: newFixture(t), clock: date(time.March, 1)}
	f.codes = repo.NewMemoryCodeRepository(0, func() time.Time { return f.clock })
	t.Cleanup(f.codes.Close)

	f.accounts = NewAccounts(f.actors, f.codes, f.images, f.hasher, f.tokens, f.notifier, 15*time.Minute, f.logger)
	f.accounts.now = func() time.Time { return f.clock }
	return f
}

func registration(email, code string) RegisterCustomerInput {
	return RegisterCustomerInput{
		FirstName: "Asha",
		LastName:  "Patil",
		Email:     email,
		Password:  "password123",
		Phone:     "9876543210",
		Code:      code,
	}
}

var sixDigits = regexp.MustCompile(`\d{6}`)

func TestAccounts_RequestRegistrationCode(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()

	var sent *entity.Mail
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *entity.Mail) bool {
		return m.Template == templates.Verification
	})).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*entity.Mail)
	}).Return(nil).Once()

	require.NoError(t, f.accounts.RequestRegistrationCode(ctx, " Asha@Example.com "))
	require.NotNil(t, sent)
	assert.Equal(t, "asha@example.com", sent.To)

	code := sixDigits.FindString(sent.Text)
	require.NotEmpty(t, code)
	assert.NoError(t, f.codes.Consume(ctx, "asha@example.com", code))
	f.mailer.AssertExpectations(t)
}

func TestAccounts_RequestRegistrationCode_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("registered_email", func(t *testing.T) {
		f := newAccountsFixture(t)
		f.customer(t, "Rohan")

		err := f.accounts.RequestRegistrationCode(ctx, "rohan@example.com")
		assert.True(t, errors.Is(err, ErrDuplicateEmail))
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("mail_failure", func(t *testing.T) {
		f := newAccountsFixture(t)
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		err := f.accounts.RequestRegistrationCode(ctx, "asha@example.com")
		assert.True(t, errors.Is(err, ErrEmailFailed))
		assert.Equal(t, 500, apperror.From(err).Status())
	})
}

func TestAccounts_RegisterCustomer(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.codes.Put(ctx, "asha@example.com", "123456", 15*time.Minute))

	actor, token, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "123456"))
	require.NoError(t, err)
	assert.NotEmpty(t, actor.ID)
	assert.Equal(t, entity.RoleCustomer, actor.Role)
	assert.NotEqual(t, "password123", actor.PasswordHash)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, claims.ID)

	f.mailer.AssertCalled(t, "Send", mock.Anything, mock.MatchedBy(func(m *entity.Mail) bool {
		return m.Template == templates.Welcome && m.To == "asha@example.com"
	}))

	t.Run("same_email_again", func(t *testing.T) {
		require.NoError(t, f.codes.Put(ctx, "asha@example.com", "654321", 15*time.Minute))

		_, _, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "654321"))
		assert.True(t, errors.Is(err, ErrDuplicateEmail))
		assert.True(t, errors.Is(err, apperror.ErrConflict))
	})
}

func TestAccounts_RegisterCustomer_Codes(t *testing.T) {
	ctx := context.Background()

	t.Run("expired_after_16_minutes", func(t *testing.T) {
		f := newAccountsFixture(t)
		require.NoError(t, f.codes.Put(ctx, "asha@example.com", "123456", 15*time.Minute))
		f.clock = f.clock.Add(16 * time.Minute)

		_, _, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "123456"))
		assert.True(t, errors.Is(err, repository.ErrCodeExpired))
		assert.True(t, errors.Is(err, apperror.ErrExpired))
		assert.Equal(t, 0, f.actors.Len())
	})

	t.Run("wrong_code", func(t *testing.T) {
		f := newAccountsFixture(t)
		require.NoError(t, f.codes.Put(ctx, "asha@example.com", "123456", 15*time.Minute))

		_, _, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "000000"))
		assert.True(t, errors.Is(err, repository.ErrInvalidCode))
	})

	t.Run("no_code_issued", func(t *testing.T) {
		f := newAccountsFixture(t)

		_, _, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "123456"))
		assert.True(t, errors.Is(err, repository.ErrInvalidCode))
	})

	t.Run("welcome_failure_is_not_fatal", func(t *testing.T) {
		f := newAccountsFixture(t)
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("quota"))
		require.NoError(t, f.codes.Put(ctx, "asha@example.com", "123456", 15*time.Minute))

		actor, _, err := f.accounts.RegisterCustomer(ctx, registration("asha@example.com", "123456"))
		require.NoError(t, err)
		assert.NotEmpty(t, actor.ID)
	})
}

func TestAccounts_RegisterCustomer_Validation(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*RegisterCustomerInput)
		code   string
	}{
		{"short_password", func(in *RegisterCustomerInput) { in.Password = "short" }, "weak_password"},
		{"short_first_name", func(in *RegisterCustomerInput) { in.FirstName = "Al" }, "invalid_first_name"},
		{"phone_length", func(in *RegisterCustomerInput) { in.Phone = "12345" }, "invalid_phone"},
		{"bad_email", func(in *RegisterCustomerInput) { in.Email = "asha" }, "invalid_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registration("asha@example.com", "123456")
			tt.modify(&in)

			_, _, err := f.accounts.RegisterCustomer(ctx, in)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.From(err).Code)
		})
	}
}

func TestAccounts_Login(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()

	hash, err := f.hasher.Hash("password123")
	require.NoError(t, err)
	id := f.identity("Meera", "meera@safarsathi.in")
	id.PasswordHash = hash
	employee, err := entity.NewEmployee(id, entity.PackageManager)
	manager := f.store(t, employee, err)

	actor, token, err := f.accounts.Login(ctx, "MEERA@safarsathi.in", "password123", entity.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, manager.ID, actor.ID)
	assert.NotEmpty(t, token)

	_, _, err = f.accounts.Login(ctx, "meera@safarsathi.in", "wrong-password", entity.RoleEmployee)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = f.accounts.Login(ctx, "nobody@safarsathi.in", "password123", entity.RoleEmployee)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = f.accounts.Login(ctx, "meera@safarsathi.in", "password123", entity.RoleCustomer)
	assert.True(t, errors.Is(err, ErrRoleMismatch))

	_, _, err = f.accounts.Login(ctx, "meera@safarsathi.in", "", entity.RoleEmployee)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestAccounts_AddEmployee(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()

	in := AddEmployeeInput{
		FirstName:        "Kavya",
		LastName:         "Iyer",
		Email:            "kavya@safarsathi.in",
		Password:         "password123",
		Phone:            "9876543210",
		Address:          testAddress,
		VerificationRole: entity.PackageManager,
	}
	actor, err := f.accounts.AddEmployee(ctx, in)
	require.NoError(t, err)
	capability, ok := actor.Capability()
	require.True(t, ok)
	assert.Equal(t, entity.CapPackageManager, capability)

	_, err = f.accounts.AddEmployee(ctx, in)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	in.Email = "other@safarsathi.in"
	in.VerificationRole = "accountant"
	_, err = f.accounts.AddEmployee(ctx, in)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func providerInput(serviceType entity.ProviderType) RegisterProviderInput {
	return RegisterProviderInput{
		FirstName:   "Arjun",
		LastName:    "Mehta",
		Email:       "stays@example.com",
		Password:    "password123",
		Phone:       "9876543210",
		Address:     testAddress,
		ServiceType: serviceType,
		Individual:  entity.IndividualDetails{Experience: 4, Languages: []string{"Marathi"}},
		Organization: entity.OrganizationDetails{
			OrganizationName: "Sahyadri Stays",
			LicenseNumber:    "LIC-42",
		},
	}
}

func TestAccounts_RegisterServiceProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("individual", func(t *testing.T) {
		f := newAccountsFixture(t)

		actor, err := f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderIndividual), nil)
		require.NoError(t, err)
		assert.False(t, actor.IsOrganization())
		f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("individual_without_experience", func(t *testing.T) {
		f := newAccountsFixture(t)
		in := providerInput(entity.ProviderIndividual)
		in.Individual.Experience = 0

		_, err := f.accounts.RegisterServiceProvider(ctx, in, nil)
		assert.True(t, errors.Is(err, ErrMissingExperience))
	})

	t.Run("organization_uploads_image", func(t *testing.T) {
		f := newAccountsFixture(t)
		f.images.On("Upload", mock.Anything, folderOrganizations, mock.Anything).
			Return("https://cdn.example.com/org.png", nil).Once()

		actor, err := f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderOrganization), pngImage("org.png"))
		require.NoError(t, err)
		assert.True(t, actor.IsOrganization())
		assert.Empty(t, actor.FirstName)
		assert.Equal(t, "https://cdn.example.com/org.png", actor.Provider.Organization.OrganizationImg)
		f.images.AssertExpectations(t)
	})

	t.Run("organization_without_image", func(t *testing.T) {
		f := newAccountsFixture(t)

		_, err := f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderOrganization), nil)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("upload_failure", func(t *testing.T) {
		f := newAccountsFixture(t)
		f.images.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 unavailable"))

		_, err := f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderOrganization), pngImage("org.png"))
		assert.True(t, errors.Is(err, ErrImageUploadFailed))
		assert.Equal(t, 0, f.actors.Len())
	})

	t.Run("duplicate_email_skips_upload", func(t *testing.T) {
		f := newAccountsFixture(t)
		existing, err := entity.NewCustomer(f.identity("Arjun", "stays@example.com"))
		f.store(t, existing, err)

		_, err = f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderOrganization), pngImage("org.png"))
		assert.True(t, errors.Is(err, ErrDuplicateEmail))
		f.images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccounts_FindServiceProviders(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()
	f.provider(t, "Ravi")

	found, err := f.accounts.FindServiceProviders(ctx, repository.ProviderFilter{Languages: []string{"English", "Tamil"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ravi", found[0].FirstName)

	_, err = f.accounts.FindServiceProviders(ctx, repository.ProviderFilter{Languages: []string{"Tamil"}})
	assert.True(t, errors.Is(err, ErrNoProviders))
}

func TestAccounts_UpdateOrganizationImage(t *testing.T) {
	f := newAccountsFixture(t)
	ctx := context.Background()

	f.images.On("Upload", mock.Anything, folderOrganizations, mock.Anything).Return("https://cdn.example.com/old.png", nil).Once()
	org, err := f.accounts.RegisterServiceProvider(ctx, providerInput(entity.ProviderOrganization), pngImage("old.png"))
	require.NoError(t, err)

	t.Run("someone_else", func(t *testing.T) {
		other := f.provider(t, "Ravi")
		_, err := f.accounts.UpdateOrganizationImage(ctx, other, org.ID, pngImage("new.png"))
		assert.True(t, errors.Is(err, ErrNotOwnProfile))
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("individual_provider", func(t *testing.T) {
		ind := f.provider(t, "Sunil")
		_, err := f.accounts.UpdateOrganizationImage(ctx, ind, ind.ID, pngImage("new.png"))
		assert.True(t, errors.Is(err, ErrNotOrganization))
	})

	t.Run("replaces_and_deletes_previous", func(t *testing.T) {
		f.images.On("Upload", mock.Anything, folderOrganizations, mock.Anything).Return("https://cdn.example.com/new.png", nil).Once()
		f.images.On("Delete", mock.Anything, "https://cdn.example.com/old.png").Return(nil).Once()

		url, err := f.accounts.UpdateOrganizationImage(ctx, org, org.ID, pngImage("new.png"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/new.png", url)

		stored, err := f.accounts.Me(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, url, stored.Provider.Organization.OrganizationImg)
		f.images.AssertExpectations(t)
	})
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(codeDigits)
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
