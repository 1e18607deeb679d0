package visualize

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/bradleyjkemp/memviz"
	"github.com/pkg/errors"
)

// We re-define the visualize model here because keys, hashes and signatures are far too
// long to render, only their shortened forms are kept.
type transaction struct {
	from      string
	to        string
	amount    float64
	timestamp int64
	signed    bool
}

type block struct {
	height   int
	hash     string
	prevHash string
	nonce    int64
	txs      []transaction
	next     *block
}

func txToTx(tx *model.Transaction) transaction {
	from := "REWARD"
	if !tx.IsReward() {
		from = utils.ShortenString(tx.FromAddress)
	}
	return transaction{
		from:      from,
		to:        utils.ShortenString(tx.ToAddress),
		amount:    tx.Amount,
		timestamp: tx.Timestamp,
		signed:    tx.Signature != "",
	}
}

func blockToBlock(b *model.Block, height int) *block {
	n := &block{
		height:   height,
		hash:     utils.ShortenString(b.Hash),
		prevHash: utils.ShortenString(b.PreviousHash),
		nonce:    b.Nonce,
	}
	for _, tx := range b.Transactions {
		n.txs = append(n.txs, txToTx(tx))
	}
	return n
}

// Given the chain, return the list from the d-th block before the tail to the tail.
func constructData(chain []*model.Block, d int) *block {
	start := len(chain) - 1 - d
	if start < 0 {
		start = 0
	}
	var root, prev *block
	for i := start; i < len(chain); i++ {
		n := blockToBlock(chain[i], i)
		if prev == nil {
			root = n
		} else {
			prev.next = n
		}
		prev = n
	}
	return root
}

// Render writes the last d+1 blocks of the chain to w as a Graphviz dot graph.
func Render(w io.Writer, chain []*model.Block, d int) {
	root := constructData(chain, d)
	memviz.Map(w, root)
}

// RenderToFile writes the dot graph to dir/chaindata-<id>.dot and, when Graphviz is installed,
// renders it to dir/rendered-chain-<id>.png. The png path is empty if it wasn't rendered.
func RenderToFile(chain []*model.Block, d int, id string, dir string) (string, string, error) {
	buf := &bytes.Buffer{}
	Render(buf, chain, d)

	dotName := filepath.Join(dir, "chaindata-"+id+".dot")
	if err := os.WriteFile(dotName, buf.Bytes(), 0644); err != nil {
		return "", "", errors.Wrapf(err, "failed to write %s", dotName)
	}

	dot, err := exec.LookPath("dot")
	if err != nil {
		return dotName, "", nil
	}
	outputName := filepath.Join(dir, "rendered-chain-"+id+".png")
	if out, err := exec.Command(dot, "-Tpng", dotName, "-o", outputName).CombinedOutput(); err != nil {
		return dotName, "", errors.Wrapf(err, "dot failed: %s", out)
	}
	return dotName, outputName, nil
}
