package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode serves canned JSON-RPC responses keyed by method name.
type fakeNode struct {
	t       *testing.T
	results map[string]string
	calls   []string
}

func (n *fakeNode) handler(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
	n.calls = append(n.calls, req.Method)

	result, ok := n.results[req.Method]
	if !ok {
		resp := rpcResponse{ID: req.ID, Error: &rpcError{Code: -32601, Message: "Method not found"}}
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	resp := rpcResponse{ID: req.ID, Result: json.RawMessage(result)}
	_ = json.NewEncoder(w).Encode(resp)
}

func newFakeNode(t *testing.T, results map[string]string) (*fakeNode, *RPCClient) {
	t.Helper()
	n := &fakeNode{t: t, results: results}
	server := httptest.NewServer(http.HandlerFunc(n.handler))
	t.Cleanup(server.Close)
	return n, NewRPCClient(RPCConfig{URL: server.URL, User: "u", Password: "p"})
}

func TestCallBasicAuthAndIDs(t *testing.T) {
	var ids []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "testpass", pass)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ids = append(ids, req.ID)
		_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`7`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "testuser", Password: "testpass"})
	for i := 0; i < 3; i++ {
		var n int
		require.NoError(t, client.Call(context.Background(), "getblockcount", nil, &n))
		assert.Equal(t, 7, n)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestCallRPCError(t *testing.T) {
	_, client := newFakeNode(t, nil)
	var out json.RawMessage
	err := client.Call(context.Background(), "getrawtransaction", []interface{}{"bad"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method not found")
}

func TestCallConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://localhost:1"})
	var n int
	err := client.Call(context.Background(), "getblockcount", nil, &n)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestCallContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var n int
	assert.Error(t, client.Call(ctx, "getblockcount", nil, &n))
}

func TestListSpendable(t *testing.T) {
	_, client := newFakeNode(t, map[string]string{
		"listunspent": `[
			{"txid":"aa","vout":0,"amount":10.0,"confirmations":12,"spendable":true},
			{"txid":"bb","vout":1,"amount":0.0001,"confirmations":3,"spendable":true},
			{"txid":"cc","vout":0,"amount":5.0,"confirmations":9,"spendable":false}
		]`,
	})

	coins, err := client.ListSpendable(context.Background(), "DAddr1", 1)
	require.NoError(t, err)
	require.Len(t, coins, 2, "watch-only entries are excluded")
	assert.Equal(t, uint64(1_000_000_000), coins[0].Amount)
	assert.Equal(t, uint64(10_000), coins[1].Amount)
	assert.Equal(t, int64(12), coins[0].Confirmations)
}

func TestCurrentHeight(t *testing.T) {
	_, client := newFakeNode(t, map[string]string{"getblockcount": `17500123`})
	height, err := client.CurrentHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17_500_123), height)
}

func TestBroadcastRejected(t *testing.T) {
	_, client := newFakeNode(t, nil)
	_, err := client.Broadcast(context.Background(), "00ff")
	assert.ErrorIs(t, err, ErrBroadcastRejected)
}

func TestFeePolicy(t *testing.T) {
	_, client := newFakeNode(t, map[string]string{
		"getmempoolinfo": `{"mempoolminfee":0.00001}`,
		"getnetworkinfo": `{"relayfee":0.00004}`,
	})
	policy, err := client.FeePolicy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), policy.MempoolMinFee)
	assert.Equal(t, uint64(4000), policy.RelayFee)
	assert.Equal(t, uint64(4000), policy.Floor())
}

func TestObservationsSince(t *testing.T) {
	node, client := newFakeNode(t, map[string]string{
		"getblockhash": `"000000blockhash"`,
		"listsinceblock": `{"transactions":[
			{"txid":"t1","address":"DWatch","category":"send","fee":-0.00021,"blockheight":5003,"blocktime":1700000300},
			{"txid":"t1","address":"DWatch","category":"send","fee":-0.00021,"blockheight":5003,"blocktime":1700000300},
			{"txid":"t2","address":"DOther","category":"receive","blockheight":5004,"blocktime":1700000400},
			{"txid":"t3","address":"DWatch","category":"receive","blockheight":4999,"blocktime":1700000100}
		]}`,
		"getrawtransaction": `{
			"txid":"t1",
			"vin":[{"txid":"prev","vout":1}],
			"vout":[
				{"value":7.0,"n":0,"scriptPubKey":{"hex":"76a914"}},
				{"value":2.5,"n":1,"scriptPubKey":{"hex":"76a915"}}
			]}`,
	})

	obs, err := client.ObservationsSince(context.Background(), 5000, []string{"DWatch"})
	require.NoError(t, err)
	// t1 deduplicated; t2 not watched; t3 at or below the cursor height.
	require.Len(t, obs, 1)

	tx := obs[0]
	assert.Equal(t, "t1", tx.TxID)
	assert.Equal(t, int64(5003), tx.Height)
	assert.Equal(t, uint64(21_000), tx.Fee)
	require.Len(t, tx.Inputs, 1)
	assert.Equal(t, "prev", tx.Inputs[0].TxID)
	require.Len(t, tx.Outputs, 2)
	assert.Equal(t, uint64(700_000_000), tx.Outputs[0].Amount)

	assert.Contains(t, node.calls, "getblockhash")
	assert.Contains(t, node.calls, "listsinceblock")
}

func TestResolveConfigLayers(t *testing.T) {
	t.Run("preset fallback", func(t *testing.T) {
		cfg, err := ResolveConfig(nil, nil, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:18443", cfg.URL)
		assert.Equal(t, "enigmatic", cfg.User)
	})

	t.Run("env overrides preset", func(t *testing.T) {
		env := map[string]string{"ENIGMATIC_RPC_URL": "http://env:14022", "ENIGMATIC_RPC_USER": "envuser"}
		cfg, err := ResolveConfig(nil, env, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "http://env:14022", cfg.URL)
		assert.Equal(t, "envuser", cfg.User)
		assert.Equal(t, "enigmatic", cfg.Password)
	})

	t.Run("overrides beat env", func(t *testing.T) {
		env := map[string]string{"ENIGMATIC_RPC_URL": "http://env:14022"}
		cfg, err := ResolveConfig(&RPCConfig{URL: "http://explicit:14022"}, env, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "http://explicit:14022", cfg.URL)
	})

	t.Run("mainnet requires explicit config", func(t *testing.T) {
		_, err := ResolveConfig(nil, nil, "mainnet")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mainnet")
	})
}
