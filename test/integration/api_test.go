// Package integration 端到端接口测试
//
// 运行方式（需要先启动完整服务）：
//
//	BIBLIOTEKA_API_URL=http://localhost:8080 go test ./test/integration/...
//
// 完整借阅流程用例还需要管理员凭证：
//
//	BIBLIOTEKA_ADMIN_EMAIL=admin@example.com BIBLIOTEKA_ADMIN_PASSWORD=...
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// client 测试客户端
type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()
	baseURL := os.Getenv("BIBLIOTEKA_API_URL")
	if baseURL == "" {
		t.Skip("BIBLIOTEKA_API_URL未设置，跳过集成测试")
	}
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// do 发送请求并解码响应
func (c *client) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// registerAndLogin 注册一个随机用户并持有其令牌
func (c *client) registerAndLogin(t *testing.T) {
	t.Helper()
	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())

	var resp struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	status := c.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Integracioni Test",
		"email":    email,
		"password": "lozinka123",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Data.Tokens.AccessToken)
	c.token = resp.Data.Tokens.AccessToken
}

// loginAdmin 用环境变量中的管理员凭证登录
func (c *client) loginAdmin(t *testing.T) {
	t.Helper()
	email := os.Getenv("BIBLIOTEKA_ADMIN_EMAIL")
	password := os.Getenv("BIBLIOTEKA_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("管理员凭证未设置，跳过该用例")
	}

	var resp struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	status := c.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	c.token = resp.Data.Tokens.AccessToken
}

func TestPing(t *testing.T) {
	c := newClient(t)
	status := c.do(t, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthFlow(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin(t)

	var me struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	status := c.do(t, http.MethodGet, "/api/v1/auth/me", nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", me.Data.Role)

	// 未带令牌401
	anon := newClient(t)
	status = anon.do(t, http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRentalFlow(t *testing.T) {
	adminClient := newClient(t)
	adminClient.loginAdmin(t)

	// 管理员建书
	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	status := adminClient.do(t, http.MethodPost, "/api/v1/books", map[string]string{
		"title":  fmt.Sprintf("Integraciona knjiga %d", time.Now().UnixNano()),
		"author": "Test Autor",
		"year":   "2024",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	bookID := created.Data.ID

	// 普通用户建单借书
	userClient := newClient(t)
	userClient.registerAndLogin(t)

	var orderResp struct {
		Data struct {
			ID       uint   `json:"id"`
			Status   string `json:"status"`
			IsActive bool   `json:"isActive"`
		} `json:"data"`
	}
	status = userClient.do(t, http.MethodPost, "/api/v1/orders",
		map[string]uint{"bookId": bookID}, &orderResp)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "active", orderResp.Data.Status)
	assert.True(t, orderResp.Data.IsActive)

	// 重复建单409（已被本人借出）
	status = userClient.do(t, http.MethodPost, "/api/v1/orders",
		map[string]uint{"bookId": bookID}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// 归还
	var returned struct {
		Data struct {
			Status   string `json:"status"`
			IsActive bool   `json:"isActive"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/api/v1/orders/%d/return", orderResp.Data.ID)
	status = userClient.do(t, http.MethodPatch, path, nil, &returned)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "returned", returned.Data.Status)
	assert.False(t, returned.Data.IsActive)

	// 重复归还400
	status = userClient.do(t, http.MethodPatch, path, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 清理：管理员删书
	status = adminClient.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", bookID), nil, nil)
	assert.Equal(t, http.StatusOK, status)
}
