package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/container"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/oracle"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisReply = "支出模式总结：本月餐饮和交通支出较多。\n\n" +
	"储蓄建议：\n1. 每周自己做饭三次\n2. 用地铁代替打车\n\n" +
	"目标建议：\n每月固定存 800 元"

func startServer(t *testing.T, cfg *config.Config, stub *oracle.Stub) *httptest.Server {
	t.Helper()
	client := oracle.NewClient(stub, oracle.Settings{}, logging.NewMockLogger())
	c, err := container.NewContainerWithOracle(cfg, client, logging.NewMockLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(c.GetServer().Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

// TestAnalyzeThenChat drives a full session: an analysis followed by two chat
// turns whose history is held by the client, as the browser does.
func TestAnalyzeThenChat(t *testing.T) {
	stub := oracle.NewStub("Try a weekly budget.")
	stub.QueueReplies(analysisReply, "Cook at home.")
	ts := startServer(t, config.Defaults(), stub)

	resp, analysis := postJSON(t, ts.URL+"/api/analyze", map[string]interface{}{
		"userDescription": "上班族",
		"transactionData": "2024-03-01, 瑞幸咖啡, -25\n2024-03-02，滴滴打车，-40\n\n2024-03-05, 工资, 8000",
		"financialGoal":   "一年存一万",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 65.0, analysis["totalExpense"])
	assert.Equal(t, 8000.0, analysis["totalIncome"])
	assert.Equal(t, map[string]interface{}{"dining": 25.0, "transportation": 40.0}, analysis["expenseCategories"])

	structured := analysis["structured"].(map[string]interface{})
	assert.Equal(t, "本月餐饮和交通支出较多。", structured["summary"])
	assert.Equal(t, []interface{}{"1. 每周自己做饭三次", "2. 用地铁代替打车"}, structured["suggestions"])

	prompt := stub.Calls()[0].Prompt
	assert.Contains(t, prompt, "上班族")
	assert.Contains(t, prompt, "一年存一万")

	history := []map[string]string{}
	for _, message := range []string{"怎么少花钱？", "还有别的吗？"} {
		resp, body := postJSON(t, ts.URL+"/api/chat", map[string]interface{}{
			"message":        message,
			"chatHistory":    history,
			"analysisResult": analysis["analysis"],
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		history = append(history,
			map[string]string{"sender": "user", "text": message},
			map[string]string{"sender": "ai", "text": body["reply"].(string)},
		)
	}

	calls := stub.Calls()
	require.Len(t, calls, 3)
	last := calls[2].Turns
	// system, analysis, ack, two replayed turns, new message
	require.Len(t, last, 6)
	assert.Equal(t, conversation.AnalysisPreamble+analysisReply, last[1].Text)
	assert.Equal(t, conversation.Turn{Role: conversation.RoleAssistant, Text: "Cook at home."}, last[4])
	assert.Equal(t, conversation.Turn{Role: conversation.RoleUser, Text: "还有别的吗？"}, last[5])
}

func TestAnalyze_InvalidLinesNeverReachOracle(t *testing.T) {
	stub := oracle.NewStub(analysisReply)
	ts := startServer(t, config.Defaults(), stub)

	resp, body := postJSON(t, ts.URL+"/api/analyze", map[string]interface{}{
		"userDescription": "student",
		"transactionData": "2024-03-01, Coffee, -5\n03/02/2024, Bus, -2\n2024-03-03, Book, abc",
		"financialGoal":   "save",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "transaction data contains invalid lines", body["message"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 2)
	assert.True(t, strings.HasPrefix(errs[0].(string), "第 2 行"))
	assert.True(t, strings.HasPrefix(errs[1].(string), "第 3 行"))
	assert.Zero(t, stub.CallCount())
}

func TestAnalyze_CustomRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - category: 购物\n    keywords: [\"bookstore\"]\n"), 0o600))
	cfg := config.Defaults()
	cfg.Categories.File = path

	ts := startServer(t, cfg, oracle.NewStub(analysisReply))
	resp, body := postJSON(t, ts.URL+"/api/analyze", map[string]interface{}{
		"transactionData": []map[string]interface{}{
			{"date": "2024-03-01", "description": "City Bookstore", "amount": -60},
			{"date": "2024-03-02", "description": "Coffee", "amount": "-5"},
		},
		"financialGoal": "save",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"shopping": 60.0, "other": 5.0}, body["expenseCategories"])
}

func TestWebSocketSession(t *testing.T) {
	stub := oracle.NewStub("ws reply")
	stub.QueueReplies(analysisReply)
	ts := startServer(t, config.Defaults(), stub)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":            "analyze",
		"id":              "a1",
		"transactionData": "2024-03-01, taxi, -30",
		"financialGoal":   "save",
	}))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "analysis", frame["type"])
	assert.Equal(t, "a1", frame["id"])
	assert.Equal(t, 30.0, frame["totalExpense"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":           "chat",
		"id":             "c1",
		"message":        "next?",
		"analysisResult": frame["analysis"],
	}))
	frame = nil
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reply", frame["type"])
	assert.Equal(t, "c1", frame["id"])
	assert.Equal(t, "ws reply", frame["reply"])
}
