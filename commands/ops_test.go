package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCommand(t *testing.T) {
	c, err := CreateCommand("mine 04abcd")
	assert.Nil(t, err)
	assert.Equal(t, Command{Op: MINE, Args: []string{"04abcd"}}, c)

	c, err = CreateCommand("  show   3 ")
	assert.Nil(t, err)
	assert.Equal(t, Command{Op: SHOW, Args: []string{"3"}}, c)

	c, err = CreateCommand("validate")
	assert.Nil(t, err)
	assert.Equal(t, VALIDATE, int(c.Op))

	c, err = CreateCommand("reward 12.5")
	assert.Nil(t, err)
	assert.Equal(t, REWARD, int(c.Op))
}

func TestCreateCommandInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"fly",
		"mine",
		"stop now",
		"show -1",
		"show x",
		"difficulty 65",
		"reward -3",
		"balance a b",
	} {
		_, err := CreateCommand(s)
		assert.NotNil(t, err, s)
	}
}

func TestDefaultCommand(t *testing.T) {
	assert.True(t, NewDefaultCommand().IsDefault())
	assert.False(t, Command{Op: STOP}.IsDefault())
}

func TestCreateClientCommand(t *testing.T) {
	c, err := CreateClientCommand("transfer 04ab 10")
	assert.Nil(t, err)
	assert.Equal(t, ClientCommand{Op: TRANSFER, Args: []string{"04ab", "10"}}, c)

	c, err = CreateClientCommand("connect 127.0.0.1 10000")
	assert.Nil(t, err)
	assert.Equal(t, CONNECT, int(c.Op))

	_, err = CreateClientCommand("connect localhost 10000")
	assert.Nil(t, err)

	c, err = CreateClientCommand("use 2")
	assert.Nil(t, err)
	assert.Equal(t, ClientCommand{Op: USE_KEY, Args: []string{"2"}}, c)

	for s, op := range map[string]int{
		"mine":     MINE_BLOCK,
		"pending":  SHOW_PENDING,
		"ledger":   SHOW_LEDGER,
		"validate": VALIDATE_CHAIN,
		"new_key":  NEW_KEY,
		"keys":     MY_KEYS,
	} {
		c, err := CreateClientCommand(s)
		assert.Nil(t, err, s)
		assert.Equal(t, op, int(c.Op), s)
	}

	for _, s := range []string{
		"",
		"transfer 04ab 0",
		"transfer 04ab",
		"connect 300.1.1.1 10000",
		"connect 127.0.0.1 port",
		"my_pk now",
		"mine 04ab",
		"use",
		"use -1",
		"use one",
		"hello",
	} {
		_, err := CreateClientCommand(s)
		assert.NotNil(t, err, s)
	}
}
