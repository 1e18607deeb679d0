package full_node

import (
	"context"
	"log/slog"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/service"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FullNodeServer exposes a full node to wallets over gRPC.
type FullNodeServer struct {
	service.UnimplementedLedgerServiceServer

	fullNode *FullNode
	logger   *slog.Logger
}

func NewFullNodeServer(f *FullNode, logger *slog.Logger) *FullNodeServer {
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return &FullNodeServer{
		fullNode: f,
		logger:   logger.With("node", f.GetUUID()),
	}
}

// SubmitTransaction parses the transaction and adds it to the pool.
func (sev *FullNodeServer) SubmitTransaction(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	tx, err := utils.ParseTransaction(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	if err := sev.fullNode.AddTransaction(tx); err != nil {
		sev.logger.Info("rejected transaction", "from", utils.ShortenString(tx.FromAddress), "err", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// MineBlock mines the pool into one block, the reward goes to the requested address. It blocks
// until the block is mined or the call is cancelled or runs past its deadline.
func (sev *FullNodeServer) MineBlock(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	b, err := sev.fullNode.MinePendingTransactions(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return marshalled(utils.MarshalBlock(b))
}

func (sev *FullNodeServer) GetBalance(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	return wrapperspb.Double(sev.fullNode.GetBalanceOfAddress(req.GetValue())), nil
}

func (sev *FullNodeServer) GetTransactions(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return marshalled(utils.MarshalTransactions(sev.fullNode.GetTransactionsOfAddress(req.GetValue())))
}

func (sev *FullNodeServer) GetLedger(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	return marshalled(utils.MarshalLedger(sev.fullNode.Snapshot()))
}

func (sev *FullNodeServer) ValidateChain(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(sev.fullNode.IsChainValid()), nil
}

func marshalled(data []byte, err error) (*wrapperspb.BytesValue, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(data), nil
}

// toStatus maps ledger errors to gRPC codes, keeping the message.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, model.ErrMissingSignature),
		errors.Is(err, model.ErrInvalidSignature),
		errors.Is(err, model.ErrUnauthorizedSigning):
		code = codes.Unauthenticated
	case errors.Is(err, model.ErrInvalidTransaction),
		errors.Is(err, model.ErrMalformedTransaction),
		errors.Is(err, model.ErrMalformedData),
		errors.Is(err, model.ErrInvalidDifficulty),
		errors.Is(err, model.ErrInvalidConfig):
		code = codes.InvalidArgument
	}
	return status.Error(code, err.Error())
}
