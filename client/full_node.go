package client

import (
	"context"
	"time"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/service"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// How long a non-mining call may take.
const DefaultTimeout = 10 * time.Second

// FullNodeClient talks to a full node over gRPC and converts to and from ledger types.
type FullNodeClient struct {
	conn   *grpc.ClientConn
	client service.LedgerServiceClient
}

// Dial connects to the full node at addr ("host:port"). Extra options are appended after the
// insecure transport credentials.
func Dial(addr string, opts ...grpc.DialOption) (*FullNodeClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", addr)
	}
	return &FullNodeClient{
		conn:   conn,
		client: service.NewLedgerServiceClient(conn),
	}, nil
}

func (c *FullNodeClient) Close() error {
	return c.conn.Close()
}

func (c *FullNodeClient) SubmitTransaction(tx *model.Transaction) error {
	data, err := utils.MarshalTransaction(tx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	_, err = c.client.SubmitTransaction(ctx, wrapperspb.Bytes(data))
	return err
}

// MineBlock asks the node to mine its pool. It has no timeout of its own, bound it with ctx.
func (c *FullNodeClient) MineBlock(ctx context.Context, rewardAddress string) (*model.Block, error) {
	res, err := c.client.MineBlock(ctx, wrapperspb.String(rewardAddress))
	if err != nil {
		return nil, err
	}
	return utils.ParseBlock(res.GetValue())
}

func (c *FullNodeClient) GetBalance(address string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	res, err := c.client.GetBalance(ctx, wrapperspb.String(address))
	if err != nil {
		return 0, err
	}
	return res.GetValue(), nil
}

func (c *FullNodeClient) GetTransactions(address string) ([]*model.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	res, err := c.client.GetTransactions(ctx, wrapperspb.String(address))
	if err != nil {
		return nil, err
	}
	return utils.ParseTransactions(res.GetValue())
}

// GetLedger fetches a snapshot of the node's whole state.
func (c *FullNodeClient) GetLedger() (*model.Ledger, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	res, err := c.client.GetLedger(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return utils.ParseLedger(res.GetValue())
}

func (c *FullNodeClient) ValidateChain() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	res, err := c.client.ValidateChain(ctx, &emptypb.Empty{})
	if err != nil {
		return false, err
	}
	return res.GetValue(), nil
}
