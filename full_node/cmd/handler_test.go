package main

import (
	"path/filepath"
	"testing"

	"github.com/Luismorlan/ledger_in_go/config"
	"github.com/Luismorlan/ledger_in_go/full_node"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/stretchr/testify/assert"
)

func createTestHandler(t *testing.T) *handler {
	c := config.DefaultAppConfig()
	c.DIFFICULTY = 1
	node, err := full_node.NewFullNode(c, nil)
	assert.Nil(t, err)
	h := newHandler(node, utils.NewDiscardLogger(), filepath.Join(t.TempDir(), "ledger.json"))
	h.renderDir = t.TempDir()
	return h
}

func TestHandleMine(t *testing.T) {
	h := createTestHandler(t)
	assert.Nil(t, h.HandleLine("mine miner"))
	h.wait()
	assert.Equal(t, 1, h.node.GetHeight())
	assert.Equal(t, 100.0, h.node.GetBalanceOfAddress("miner"))
	assert.False(t, h.isMining.Load())

	// Every mined block is persisted.
	l, err := utils.ReadLedgerFromFile(h.statePath)
	assert.Nil(t, err)
	assert.Len(t, l.Chain, 2)
}

func TestHandleStartStop(t *testing.T) {
	h := createTestHandler(t)
	assert.NotNil(t, h.HandleLine("stop"))

	assert.Nil(t, h.HandleLine("difficulty 64"))
	assert.Nil(t, h.HandleLine("start miner"))
	assert.NotNil(t, h.HandleLine("mine miner"))
	assert.Nil(t, h.HandleLine("stop"))
	h.wait()
	assert.False(t, h.isMining.Load())
	assert.Equal(t, 0, h.node.GetHeight())
}

func TestHandleSettings(t *testing.T) {
	h := createTestHandler(t)
	assert.Nil(t, h.HandleLine("difficulty 3"))
	assert.Nil(t, h.HandleLine("reward 12.5"))
	assert.Equal(t, 3, h.node.GetDifficulty())
	assert.Equal(t, 12.5, h.node.GetMiningReward())

	assert.NotNil(t, h.HandleLine("difficulty 65"))
	assert.NotNil(t, h.HandleLine("reward -1"))
	assert.NotNil(t, h.HandleLine("launch"))
	assert.NotNil(t, h.HandleLine(""))
}

func TestHandleQueries(t *testing.T) {
	h := createTestHandler(t)
	for _, line := range []string{"balance x", "history x", "pending", "validate"} {
		assert.Nil(t, h.HandleLine(line), line)
	}
}

func TestHandleSave(t *testing.T) {
	h := createTestHandler(t)
	assert.Nil(t, h.HandleLine("reward 7"))
	assert.Nil(t, h.HandleLine("save"))

	node, err := loadNode(config.DefaultAppConfig(), h.statePath, utils.NewDiscardLogger())
	assert.Nil(t, err)
	assert.Equal(t, 7.0, node.GetMiningReward())

	fresh, err := loadNode(config.DefaultAppConfig(), filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, fresh.GetHeight())
}
