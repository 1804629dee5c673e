package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionskit/internal/store"
	"actionskit/internal/types"
	"actionskit/pkg/assistant"
)

// recordingAudit captures audit records in memory.
type recordingAudit struct {
	records []types.TurnRecord
}

func (r *recordingAudit) Append(rec types.TurnRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestAgent() (*Agent, *store.MemoryStore, *recordingAudit) {
	ms := store.NewMemoryStore(20)
	audit := &recordingAudit{}
	return New(ms, nil, audit), ms, audit
}

func turnFor(intent, rawInput string) *assistant.Turn {
	return &assistant.Turn{
		Intent:         intent,
		RawInput:       rawInput,
		ConversationID: "conv-42",
		APIVersion:     assistant.V2,
		Arguments:      map[string]assistant.ArgumentValue{},
		Capabilities:   map[string]bool{},
	}
}

func dispatch(t *testing.T, a *Agent, turn *assistant.Turn) *assistant.Envelope {
	t.Helper()
	env, err := assistant.NewDispatcher(a.Handlers()).Dispatch(context.Background(), turn)
	require.NoError(t, err)
	require.NotNil(t, env)
	return env
}

func TestWelcomeAsksWithRichGreeting(t *testing.T) {
	a, _, audit := newTestAgent()

	env := dispatch(t, a, turnFor(assistant.IntentMain, ""))

	assert.True(t, env.ExpectUserResponse)
	require.NotNil(t, env.Rich)
	assert.Equal(t, assistant.IntentUnknown, env.ExpectedIntent())
	require.Len(t, audit.records, 1)
	assert.Equal(t, assistant.IntentMain, audit.records[0].Intent)
	assert.False(t, audit.records[0].Final)
}

func TestRideRequestAsksForPermissions(t *testing.T) {
	a, _, _ := newTestAgent()

	env := dispatch(t, a, turnFor(assistant.IntentText, "get me a ride"))

	assert.True(t, env.ExpectUserResponse)
	assert.Equal(t, assistant.IntentPermission, env.ExpectedIntent())

	var state dialogState
	require.NoError(t, json.Unmarshal(env.DialogState, &state))
	assert.Equal(t, stageRide, state.Stage)
}

func TestGoodbyeEndsConversationAndClearsTranscript(t *testing.T) {
	a, ms, audit := newTestAgent()
	ms.Append("conv-42", store.Message{Role: "user", Content: "hi"})

	env := dispatch(t, a, turnFor(assistant.IntentText, "goodbye"))

	assert.False(t, env.ExpectUserResponse)
	require.NotNil(t, env.Final)
	assert.Equal(t, "Goodbye! Safe travels.", env.Final.TextToSpeech)
	assert.Empty(t, ms.Get("conv-42"))
	require.Len(t, audit.records, 1)
	assert.True(t, audit.records[0].Final)
}

func TestUnclassifiedTextFallsBackWithoutModel(t *testing.T) {
	a, _, _ := newTestAgent()

	env := dispatch(t, a, turnFor(assistant.IntentText, "tell me a joke"))

	assert.True(t, env.ExpectUserResponse)
	require.NotNil(t, env.Prompt)
	assert.Contains(t, env.Prompt.Initial(), "ride or a snack")
}

func TestPermissionGrantAsksForRideConfirmation(t *testing.T) {
	a, ms, _ := newTestAgent()

	turn := turnFor(assistant.IntentPermission, "")
	turn.Arguments[assistant.ArgumentPermission] = assistant.ArgumentValue{
		Name: assistant.ArgumentPermission,
		Text: "true",
	}
	turn.User = &assistant.UserProfile{Name: "Ada"}
	turn.Location = &assistant.DeviceLocation{Address: "1 Main St"}

	env := dispatch(t, a, turn)

	assert.Equal(t, assistant.IntentConfirmation, env.ExpectedIntent())
	passenger, pickup, ok := ms.GetPendingRide("conv-42")
	require.True(t, ok)
	assert.Equal(t, "Ada", passenger)
	assert.Equal(t, "1 Main St", pickup)
}

func TestPermissionDenialKeepsConversationOpen(t *testing.T) {
	a, _, _ := newTestAgent()

	env := dispatch(t, a, turnFor(assistant.IntentPermission, ""))

	assert.True(t, env.ExpectUserResponse)
	assert.Equal(t, assistant.IntentUnknown, env.ExpectedIntent())
	require.NotNil(t, env.Prompt)
	assert.Contains(t, env.Prompt.Initial(), "No worries")
}

func TestConfirmationDispatchesPendingRide(t *testing.T) {
	a, ms, _ := newTestAgent()
	ms.SetPendingRide("conv-42", "Ada", "1 Main St")

	turn := turnFor(assistant.IntentConfirmation, "")
	turn.Arguments[assistant.ArgumentConfirmation] = assistant.ArgumentValue{
		Name: assistant.ArgumentConfirmation,
		Text: "true",
	}
	env := dispatch(t, a, turn)

	assert.False(t, env.ExpectUserResponse)
	require.NotNil(t, env.Final)
	assert.Contains(t, env.Final.TextToSpeech, "Ada")
	assert.Contains(t, env.Final.TextToSpeech, "1 Main St")
	_, _, ok := ms.GetPendingRide("conv-42")
	assert.False(t, ok)
}

func TestConfirmationDeclinedCancelsRide(t *testing.T) {
	a, ms, _ := newTestAgent()
	ms.SetPendingRide("conv-42", "Ada", "1 Main St")

	turn := turnFor(assistant.IntentConfirmation, "")
	turn.Arguments[assistant.ArgumentConfirmation] = assistant.ArgumentValue{
		Name: assistant.ArgumentConfirmation,
		Text: "false",
	}
	env := dispatch(t, a, turn)

	assert.True(t, env.ExpectUserResponse)
	_, _, ok := ms.GetPendingRide("conv-42")
	assert.False(t, ok)
}

func TestMenuShowsCarouselAndCachesOffers(t *testing.T) {
	a, ms, _ := newTestAgent()

	env := dispatch(t, a, turnFor(assistant.IntentText, "show me the menu"))

	assert.Equal(t, assistant.IntentOption, env.ExpectedIntent())
	offers, ok := ms.GetLastOffers("conv-42")
	require.True(t, ok)
	assert.Len(t, offers, 3)
}

func TestOptionSelectionProposesOrder(t *testing.T) {
	a, ms, _ := newTestAgent()
	ms.SetLastOffers("conv-42", []store.Offer{{Key: "latte", Title: "Latte"}})

	turn := turnFor(assistant.IntentOption, "")
	turn.Arguments[assistant.ArgumentOption] = assistant.ArgumentValue{
		Name: assistant.ArgumentOption,
		Text: "latte",
	}
	env := dispatch(t, a, turn)

	assert.Equal(t, assistant.IntentTransactionDecision, env.ExpectedIntent())

	var state dialogState
	require.NoError(t, json.Unmarshal(env.DialogState, &state))
	assert.Equal(t, stageOrder, state.Stage)
	assert.NotEmpty(t, state.OrderID)
}

func TestTransactionDecisionAcceptedConfirmsOrder(t *testing.T) {
	a, _, audit := newTestAgent()

	turn := turnFor(assistant.IntentTransactionDecision, "")
	turn.DialogState = json.RawMessage(`{"stage":"order","orderId":"order-7"}`)
	turn.Arguments[assistant.ArgumentTransactionDecision] = assistant.ArgumentValue{
		Name: assistant.ArgumentTransactionDecision,
		Raw:  json.RawMessage(`{"name":"TRANSACTION_DECISION_VALUE","extension":{"userDecision":"ORDER_ACCEPTED"}}`),
	}
	env := dispatch(t, a, turn)

	assert.False(t, env.ExpectUserResponse)
	require.NotNil(t, env.OrderUpdate)
	require.Len(t, audit.records, 1)
	assert.True(t, audit.records[0].Final)

	body, err := env.MarshalFor(assistant.V2)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"order-7"`)
	assert.Contains(t, string(body), assistant.OrderStateConfirmed)
}

func TestTransactionDecisionRejectedCancelsOrder(t *testing.T) {
	a, _, _ := newTestAgent()

	turn := turnFor(assistant.IntentTransactionDecision, "")
	turn.Arguments[assistant.ArgumentTransactionDecision] = assistant.ArgumentValue{
		Name: assistant.ArgumentTransactionDecision,
		Raw:  json.RawMessage(`{"extension":{"userDecision":"ORDER_REJECTED"}}`),
	}
	env := dispatch(t, a, turn)

	assert.False(t, env.ExpectUserResponse)
	body, err := env.MarshalFor(assistant.V2)
	require.NoError(t, err)
	assert.Contains(t, string(body), assistant.OrderStateRejected)
}

func TestTransactionRequirementsOKLeadsToMenu(t *testing.T) {
	a, _, _ := newTestAgent()

	turn := turnFor(assistant.IntentTransactionRequirements, "")
	turn.Arguments[assistant.ArgumentTransactionReqCheck] = assistant.ArgumentValue{
		Name: assistant.ArgumentTransactionReqCheck,
		Raw:  json.RawMessage(`{"extension":{"resultType":"OK"}}`),
	}
	env := dispatch(t, a, turn)

	assert.Equal(t, assistant.IntentOption, env.ExpectedIntent())
}

func TestDateTimeFollowUpReadsStructuredValue(t *testing.T) {
	a, _, _ := newTestAgent()

	turn := turnFor(assistant.IntentDateTime, "")
	turn.Arguments[assistant.ArgumentDateTime] = assistant.ArgumentValue{
		Name: assistant.ArgumentDateTime,
		Raw:  json.RawMessage(`{"datetimeValue":{"date":{"year":2026,"month":9,"day":3},"time":{"hours":14,"minutes":30}}}`),
	}
	env := dispatch(t, a, turn)

	require.NotNil(t, env.Prompt)
	assert.Contains(t, env.Prompt.Initial(), "2026-09-03 at 14:30")
}

func TestDeliveryAddressAccepted(t *testing.T) {
	a, _, _ := newTestAgent()

	turn := turnFor(assistant.IntentDeliveryAddress, "")
	turn.Arguments[assistant.ArgumentDeliveryAddress] = assistant.ArgumentValue{
		Name: assistant.ArgumentDeliveryAddress,
		Raw:  json.RawMessage(`{"extension":{"userDecision":"ACCEPTED","location":{"postalAddress":{"locality":"Springfield"}}}}`),
	}
	env := dispatch(t, a, turn)

	require.NotNil(t, env.Prompt)
	assert.Contains(t, env.Prompt.Initial(), "Springfield")
}

func TestFallbackHandlesUnroutedIntent(t *testing.T) {
	a, _, _ := newTestAgent()

	env := dispatch(t, a, turnFor("actions.intent.NO_INPUT", ""))

	assert.True(t, env.ExpectUserResponse)
	require.NotNil(t, env.Prompt)
	assert.Contains(t, env.Prompt.Initial(), "didn't catch that")
}

func TestAuditRecordsCarryConversationAndQuery(t *testing.T) {
	a, _, audit := newTestAgent()

	dispatch(t, a, turnFor(assistant.IntentText, "show me the menu"))

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, "conv-42", rec.ConversationID)
	assert.Equal(t, "show me the menu", rec.Query)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestEachOfferPricesToAKnownAmount(t *testing.T) {
	for _, key := range []string{"espresso", "latte", "croissant"} {
		p := snackPrice(key)
		assert.Equal(t, "ACTUAL", p.Type, fmt.Sprintf("key %s", key))
		assert.Equal(t, "USD", p.CurrencyCode)
		assert.Greater(t, p.Units, int64(0))
	}
}
