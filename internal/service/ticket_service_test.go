package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

func TestCreateTicketDefaults(t *testing.T) {
	fx := newFixture(t)

	ticket, err := fx.ticketSvc.CreateTicket(context.Background(), staffActor(), TicketCreateInput{
		RequesterID: "user-1",
		Subject:     "  padded subject  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "padded subject", ticket.Subject)
	assert.True(t, strings.HasPrefix(ticket.ExternalKey, "TCK-"))
}

func TestCreateTicketRequiresRequesterAndSubject(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.ticketSvc.CreateTicket(context.Background(), staffActor(), TicketCreateInput{Subject: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = fx.ticketSvc.CreateTicket(context.Background(), staffActor(), TicketCreateInput{RequesterID: "user-1", Subject: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestChangeStatusRejectsInvalidTransition(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ticket, err := fx.ticketSvc.CreateTicket(ctx, staffActor(), TicketCreateInput{
		RequesterID: "user-1",
		Subject:     "stuck",
	})
	require.NoError(t, err)

	_, err = fx.ticketSvc.ChangeStatus(ctx, staffActor(), ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	// A closed ticket can only reopen.
	_, err = fx.ticketSvc.ChangeStatus(ctx, staffActor(), ticket.ID, domain.TicketStatusReplied)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "CONFLICT"))
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ticket, err := fx.ticketSvc.CreateTicket(ctx, staffActor(), TicketCreateInput{
		RequesterID: "user-1",
		Subject:     "idempotent",
	})
	require.NoError(t, err)

	before := len(fx.recorder.ofType("ticket_status_changed"))
	same, err := fx.ticketSvc.ChangeStatus(ctx, staffActor(), ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, same.Status)
	assert.Len(t, fx.recorder.ofType("ticket_status_changed"), before)
}

func TestChangePriorityRejectsUnknown(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ticket, err := fx.ticketSvc.CreateTicket(ctx, staffActor(), TicketCreateInput{
		RequesterID: "user-1",
		Subject:     "priority check",
	})
	require.NoError(t, err)

	_, err = fx.ticketSvc.ChangePriority(ctx, staffActor(), ticket.ID, domain.TicketPriority("CRITICAL"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestGetTicketNotFound(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.ticketSvc.GetTicket(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}
