package service

import (
	"context"
	"testing"

	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIssuesSharingCode(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewChildService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, dto.RegisterChildRequest{Name: "Anna", Age: 8, Gender: "female"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ChildID)
	assert.Len(t, resp.Code, 6)

	login, err := svc.LoginByCode(ctx, resp.Code)
	require.NoError(t, err)
	assert.Equal(t, resp.ChildID, login.ChildID)
	assert.Equal(t, "Anna", login.Name)
	assert.Equal(t, 8, login.Age)
}

func TestRegisterRejectsUnsupportedAge(t *testing.T) {
	svc := NewChildService(newFakeChildRepo())
	_, err := svc.Register(context.Background(), dto.RegisterChildRequest{Name: "Anna", Age: 1})
	assert.Error(t, err)
	_, err = svc.Register(context.Background(), dto.RegisterChildRequest{Name: "Ben", Age: 18})
	assert.Error(t, err)
}

func TestUpdateChildDetails(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewChildService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, dto.RegisterChildRequest{Name: "Ana", Age: 8})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, reg.ChildID, dto.UpdateChildRequest{Name: "Anna", Age: 9}))
	login, err := svc.LoginByCode(ctx, reg.Code)
	require.NoError(t, err)
	assert.Equal(t, "Anna", login.Name)
	assert.Equal(t, 9, login.Age)
}

func TestUpdateChildRejectsBadInput(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewChildService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, dto.RegisterChildRequest{Name: "Anna", Age: 8})
	require.NoError(t, err)

	assert.Error(t, svc.Update(ctx, reg.ChildID, dto.UpdateChildRequest{Name: "Anna", Age: 20}))
	assert.Error(t, svc.Update(ctx, "missing", dto.UpdateChildRequest{Name: "Anna", Age: 9}))
}

func TestLoginByCodeUnknown(t *testing.T) {
	svc := NewChildService(newFakeChildRepo())
	_, err := svc.LoginByCode(context.Background(), "zzzzzz")
	assert.Error(t, err)
}
