package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-chain/internal/chain"
	"ticket-chain/internal/status"
	"ticket-chain/models"
	"ticket-chain/monitoring"
)

const testRecipient = "0x00000000000000000000000000000000000000cc"

type MockTransferBackend struct {
	mock.Mock
}

func (m *MockTransferBackend) GetTicket(ctx context.Context, ticketID string) (*models.UserTicket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTicket), args.Error(1)
}

func (m *MockTransferBackend) ReportTransfer(ctx context.Context, ticketID, recipientEmail, txHash string) error {
	args := m.Called(ctx, ticketID, recipientEmail, txHash)
	return args.Error(0)
}

func setupTransferService() (*TransferService, *MockTicketingContract, *MockWaiter, *MockTransferBackend, *MockInvalidator, *RecordingPublisher) {
	ticketing := &MockTicketingContract{}
	waiter := &MockWaiter{}
	backend := &MockTransferBackend{}
	invalidator := &MockInvalidator{}
	publisher := &RecordingPublisher{}

	service := NewTransferService(ticketing, waiter, backend, invalidator, publisher, &monitoring.Monitor{})
	return service, ticketing, waiter, backend, invalidator, publisher
}

func ownedTicket() *models.UserTicket {
	return &models.UserTicket{
		ID:           "t-1",
		TicketID:     "42",
		EventID:      "ev-1",
		OwnerAddress: testBuyer,
		Status:       "valid",
	}
}

func transferReq() models.TransferRequest {
	return models.TransferRequest{
		TicketID:       "t-1",
		ToAddress:      testRecipient,
		RecipientEmail: "new@owner.example",
	}
}

func TestTransfer_Success(t *testing.T) {
	service, ticketing, waiter, backend, invalidator, publisher := setupTransferService()
	ctx := context.Background()

	backend.On("GetTicket", ctx, "t-1").Return(ownedTicket(), nil)
	ticketing.On("OwnerOf", ctx, big.NewInt(42)).Return(testBuyer, nil)
	ticketing.On("TransferTicket", ctx, testBuyer, big.NewInt(42), testRecipient).Return("0xmove", nil)
	waiter.On("WaitMined", ctx, "0xmove").Return(&chain.Receipt{TxHash: "0xmove", Succeeded: true}, nil)
	backend.On("ReportTransfer", ctx, "t-1", "new@owner.example", "0xmove").Return(nil)
	invalidator.On("InvalidateTicket", ctx, "t-1", testBuyer).Return(nil)

	result, err := service.Transfer(ctx, testBuyer, transferReq())
	require.NoError(t, err)

	assert.Equal(t, "0xmove", result.TxHash)
	assert.True(t, result.Recorded)
	ticketing.AssertExpectations(t)
	backend.AssertExpectations(t)
	invalidator.AssertExpectations(t)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, NoticeTransferSuccess, publisher.published[0]["type"])
}

func TestTransfer_NotOwner_NoChainCall(t *testing.T) {
	service, ticketing, _, backend, _, _ := setupTransferService()
	ctx := context.Background()

	ticket := ownedTicket()
	ticket.OwnerAddress = "0x00000000000000000000000000000000000000dd"
	backend.On("GetTicket", ctx, "t-1").Return(ticket, nil)

	_, err := service.Transfer(ctx, testBuyer, transferReq())

	assert.ErrorIs(t, err, status.ErrNotTicketOwner)
	ticketing.AssertNotCalled(t, "TransferTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_StaleMirror_ChainOwnerDisagrees(t *testing.T) {
	service, ticketing, _, backend, _, _ := setupTransferService()
	ctx := context.Background()

	// The mirror still lists the sender, but the ticket already moved.
	backend.On("GetTicket", ctx, "t-1").Return(ownedTicket(), nil)
	ticketing.On("OwnerOf", ctx, big.NewInt(42)).Return("0x00000000000000000000000000000000000000ee", nil)

	_, err := service.Transfer(ctx, testBuyer, transferReq())

	assert.ErrorIs(t, err, status.ErrNotTicketOwner)
	ticketing.AssertNotCalled(t, "TransferTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_OwnerCheckIsCaseInsensitive(t *testing.T) {
	service, ticketing, waiter, backend, invalidator, _ := setupTransferService()
	ctx := context.Background()

	ticket := ownedTicket()
	ticket.OwnerAddress = "0x00000000000000000000000000000000000000BB"
	backend.On("GetTicket", ctx, "t-1").Return(ticket, nil)
	ticketing.On("OwnerOf", ctx, big.NewInt(42)).Return("0x00000000000000000000000000000000000000BB", nil)
	ticketing.On("TransferTicket", ctx, testBuyer, big.NewInt(42), testRecipient).Return("0xmove", nil)
	waiter.On("WaitMined", ctx, "0xmove").Return(&chain.Receipt{TxHash: "0xmove", Succeeded: true}, nil)
	backend.On("ReportTransfer", ctx, "t-1", "new@owner.example", "0xmove").Return(nil)
	invalidator.On("InvalidateTicket", ctx, "t-1", ticket.OwnerAddress).Return(nil)

	_, err := service.Transfer(ctx, testBuyer, transferReq())
	assert.NoError(t, err)
}

func TestTransfer_BadRecipientAddress(t *testing.T) {
	service, _, _, backend, _, _ := setupTransferService()

	req := transferReq()
	req.ToAddress = "not-an-address"
	_, err := service.Transfer(context.Background(), testBuyer, req)

	require.Error(t, err)
	var flowErr *status.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, status.StageValidatingInput, flowErr.Stage)
	backend.AssertNotCalled(t, "GetTicket", mock.Anything, mock.Anything)
}

func TestTransfer_WalletNotConnected(t *testing.T) {
	service, _, _, _, _, _ := setupTransferService()

	_, err := service.Transfer(context.Background(), "", transferReq())
	assert.ErrorIs(t, err, status.ErrWalletNotConnected)
}

func TestTransfer_UserRejectsSignature(t *testing.T) {
	service, ticketing, _, backend, _, _ := setupTransferService()
	ctx := context.Background()

	backend.On("GetTicket", ctx, "t-1").Return(ownedTicket(), nil)
	ticketing.On("OwnerOf", ctx, big.NewInt(42)).Return(testBuyer, nil)
	ticketing.On("TransferTicket", ctx, testBuyer, big.NewInt(42), testRecipient).Return("", status.ErrUserRejected)

	_, err := service.Transfer(ctx, testBuyer, transferReq())

	assert.ErrorIs(t, err, status.ErrUserRejected)
	backend.AssertNotCalled(t, "ReportTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_ReportFails_MovedButUnrecorded(t *testing.T) {
	service, ticketing, waiter, backend, invalidator, publisher := setupTransferService()
	ctx := context.Background()

	backend.On("GetTicket", ctx, "t-1").Return(ownedTicket(), nil)
	ticketing.On("OwnerOf", ctx, big.NewInt(42)).Return(testBuyer, nil)
	ticketing.On("TransferTicket", ctx, testBuyer, big.NewInt(42), testRecipient).Return("0xmove", nil)
	waiter.On("WaitMined", ctx, "0xmove").Return(&chain.Receipt{TxHash: "0xmove", Succeeded: true}, nil)
	backend.On("ReportTransfer", ctx, "t-1", "new@owner.example", "0xmove").Return(errors.New("network error"))

	result, err := service.Transfer(ctx, testBuyer, transferReq())

	assert.ErrorIs(t, err, status.ErrPaidButUnrecorded)
	require.NotNil(t, result)
	assert.Equal(t, "0xmove", result.TxHash)
	assert.False(t, result.Recorded)

	invalidator.AssertNotCalled(t, "InvalidateTicket", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, NoticeTransferUnrecorded, publisher.published[0]["type"])
}

func TestTransferRetryReport_Success(t *testing.T) {
	service, _, _, backend, invalidator, publisher := setupTransferService()
	ctx := context.Background()

	backend.On("ReportTransfer", ctx, "t-1", "new@owner.example", "0xmove").Return(nil)
	invalidator.On("InvalidateTicket", ctx, "t-1", testBuyer).Return(nil)

	err := service.RetryReport(ctx, testBuyer, transferReq(), "0xmove")
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, NoticeTransferSuccess, publisher.published[0]["type"])
}
