// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package composer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/syncmeet/composer"
	"github.com/danielhkuo/syncmeet/composer/mocks"
	"github.com/danielhkuo/syncmeet/models"
)

func newComposer(t *testing.T) (*composer.Composer, *mocks.MockPollStore, *mocks.MockDispatcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockPollStore(ctrl)
	dispatcher := mocks.NewMockDispatcher(ctrl)
	return composer.New(store, dispatcher), store, dispatcher
}

func fillForm(c *composer.Composer) {
	c.SetTitle("Sprint planning")
	c.SetDescription("Pick one")
	c.SetSlots([]string{"Mon 9am", "Tue 2pm"})
	c.SetRecipients("ann@example.com ben@example.com")
}

func TestSetRecipients_NormalizesAndDedupes(t *testing.T) {
	c, _, _ := newComposer(t)

	got := c.SetRecipients("ann@example.com ben@example.com, Ann@Example.com")
	assert.Equal(t, []string{"ann@example.com", "ben@example.com"}, got)
	assert.Equal(t, "ann@example.com, ben@example.com, Ann@Example.com", c.RawRecipients())
}

func TestSetRecipients_ClearsPriorityOnChange(t *testing.T) {
	c, _, _ := newComposer(t)

	c.SetRecipients("ann@example.com, ben@example.com")
	require.NoError(t, c.MarkPriority("ben@example.com"))

	// same list, different text
	c.SetRecipients("ann@example.com ben@example.com")
	assert.Equal(t, []string{"ben@example.com"}, c.Draft().Priority)

	c.SetRecipients("ann@example.com, ben@example.com, cy@example.com")
	assert.Empty(t, c.Draft().Priority)
}

func TestMarkPriority(t *testing.T) {
	c, _, _ := newComposer(t)
	c.SetRecipients("ann@example.com, ben@example.com")

	err := c.MarkPriority("zed@example.com")
	require.ErrorIs(t, err, composer.ErrNotRecipient)

	require.NoError(t, c.MarkPriority("BEN@example.com"))
	require.NoError(t, c.MarkPriority("ben@example.com"))
	assert.Equal(t, []string{"ben@example.com"}, c.Draft().Priority)

	c.UnmarkPriority("Ben@Example.com")
	assert.Empty(t, c.Draft().Priority)
}

func TestValidate_AggregatesProblems(t *testing.T) {
	c, _, _ := newComposer(t)
	c.SetSlots([]string{"Mon 9am"})

	err := c.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, composer.ErrTitleRequired)
	assert.ErrorIs(t, err, composer.ErrTooFewSlots)
	assert.ErrorIs(t, err, composer.ErrNoRecipients)
}

func TestValidate_Slots(t *testing.T) {
	tests := []struct {
		name  string
		slots []string
		want  error
	}{
		{"empty slot", []string{"Mon 9am", "  "}, composer.ErrEmptySlot},
		{"duplicate", []string{"Mon 9am", "Mon 9am"}, composer.ErrDuplicateSlot},
		{"too few", []string{"Mon 9am"}, composer.ErrTooFewSlots},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newComposer(t)
			fillForm(c)
			c.SetSlots(tt.slots)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	c, _, _ := newComposer(t)
	fillForm(c)
	c.AddSlot("Wed 4pm")
	assert.NoError(t, c.Validate())
}

func TestSubmit_Success(t *testing.T) {
	c, store, dispatcher := newComposer(t)

	recipients := []string{gofakeit.Email(), gofakeit.Email(), gofakeit.Email()}
	c.SetTitle(gofakeit.Name() + " sync")
	c.SetSlots([]string{"Mon 9am", "Tue 2pm"})
	got := c.SetRecipients(strings.Join(recipients, ", "))
	require.NoError(t, c.MarkPriority(got[0]))
	c.SetVotePolicy(false)

	want := c.Draft()
	created := models.CreatePollResponse{PollID: "p1", AdminKey: "k1", CreatedAt: time.Now()}
	sentAt := time.Now().UTC()

	gomock.InOrder(
		store.EXPECT().CreatePoll(gomock.Any(), want).Return(created, nil),
		dispatcher.EXPECT().Dispatch(gomock.Any(), "p1", want).Return(nil),
		store.EXPECT().MarkSent(gomock.Any(), "p1", "k1").Return(sentAt, nil),
	)

	receipt, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", receipt.PollID)
	assert.Equal(t, "k1", receipt.AdminKey)
	assert.Equal(t, sentAt, receipt.SentAt)
	require.NotNil(t, want.AllowMultipleVotes)
	assert.False(t, *want.AllowMultipleVotes)

	// cleared after the acknowledgement
	draft := c.Draft()
	assert.Empty(t, draft.Title)
	assert.Empty(t, draft.Slots)
	assert.Empty(t, draft.Recipients)
	assert.Empty(t, draft.Priority)
	assert.Nil(t, draft.AllowMultipleVotes)
}

func TestSubmit_InvalidMakesNoCalls(t *testing.T) {
	c, _, _ := newComposer(t)
	c.SetTitle("Only a title")

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Only a title", c.Draft().Title)
}

func TestSubmit_StoreFailureKeepsForm(t *testing.T) {
	c, store, _ := newComposer(t)
	fillForm(c)
	before := c.Draft()

	store.EXPECT().CreatePoll(gomock.Any(), gomock.Any()).Return(models.CreatePollResponse{}, errors.New("boom"))

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, c.Draft())
}

func TestSubmit_DispatchFailureKeepsFormAndResendsStoredPoll(t *testing.T) {
	c, store, dispatcher := newComposer(t)
	fillForm(c)
	before := c.Draft()

	created := models.CreatePollResponse{PollID: "p1", AdminKey: "k1"}
	store.EXPECT().CreatePoll(gomock.Any(), before).Return(created, nil).Times(1)

	dispatchErr := errors.New("mailer down")
	gomock.InOrder(
		dispatcher.EXPECT().Dispatch(gomock.Any(), "p1", before).Return(dispatchErr),
		dispatcher.EXPECT().Dispatch(gomock.Any(), "p1", before).Return(nil),
	)
	store.EXPECT().MarkSent(gomock.Any(), "p1", "k1").Return(time.Now(), nil)

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, dispatchErr)
	assert.Equal(t, before, c.Draft())

	receipt, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", receipt.PollID)
}

func TestSubmit_EditAfterDispatchFailureStoresAgain(t *testing.T) {
	c, store, dispatcher := newComposer(t)
	fillForm(c)

	gomock.InOrder(
		store.EXPECT().CreatePoll(gomock.Any(), gomock.Any()).Return(models.CreatePollResponse{PollID: "p1", AdminKey: "k1"}, nil),
		dispatcher.EXPECT().Dispatch(gomock.Any(), "p1", gomock.Any()).Return(errors.New("mailer down")),
		store.EXPECT().CreatePoll(gomock.Any(), gomock.Any()).Return(models.CreatePollResponse{PollID: "p2", AdminKey: "k2"}, nil),
		dispatcher.EXPECT().Dispatch(gomock.Any(), "p2", gomock.Any()).Return(nil),
		store.EXPECT().MarkSent(gomock.Any(), "p2", "k2").Return(time.Now(), nil),
	)

	_, err := c.Submit(context.Background())
	require.Error(t, err)

	c.SetTitle("Sprint planning, take two")
	receipt, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p2", receipt.PollID)
}

func TestSubmit_MarkSentFailureStillClears(t *testing.T) {
	c, store, dispatcher := newComposer(t)
	fillForm(c)

	store.EXPECT().CreatePoll(gomock.Any(), gomock.Any()).Return(models.CreatePollResponse{PollID: "p1", AdminKey: "k1"}, nil)
	dispatcher.EXPECT().Dispatch(gomock.Any(), "p1", gomock.Any()).Return(nil)
	store.EXPECT().MarkSent(gomock.Any(), "p1", "k1").Return(time.Time{}, errors.New("store down"))

	receipt, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.SentAt.IsZero())
	assert.Empty(t, c.Draft().Title)
}
