package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
//
// 这些测试需要一个跑起来的服务和一个已有的管理员账号,通过环境变量指定:
//
//	CERBRARY_IT_BASE_URL       如 http://localhost:8080/api/v1
//	CERBRARY_IT_ADMIN_EMAIL    管理员邮箱
//	CERBRARY_IT_ADMIN_PASSWORD 管理员密码
//
// 未设置时自动跳过,不影响单元测试
const requestTimeout = 10 * time.Second

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// LoginData 登录响应数据
type LoginData struct {
	User struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// LoanData 借阅记录响应数据
type LoanData struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	UserID     uint   `json:"user_id"`
	Status     string `json:"status"`
	LoanDate   string `json:"loan_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date"`
}

// BaseURL 返回被测服务地址,未配置时跳过测试
func BaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("CERBRARY_IT_BASE_URL")
	if url == "" {
		t.Skip("未设置CERBRARY_IT_BASE_URL,跳过集成测试")
	}
	return url
}

// DoJSON 发送带JSON body的请求并解析响应
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, http.MethodPut, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, http.MethodGet, url, nil, token)
}

// DeleteJSON 发送DELETE请求
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, http.MethodDelete, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// itoa uint转字符串,拼URL用
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// GenerateTestISBN 生成唯一的测试ISBN(13位)
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%10000000000)
}

// AdminToken 用环境变量里的管理员账号登录
func AdminToken(t *testing.T) string {
	t.Helper()
	email := os.Getenv("CERBRARY_IT_ADMIN_EMAIL")
	password := os.Getenv("CERBRARY_IT_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("未设置CERBRARY_IT_ADMIN_EMAIL/PASSWORD,跳过集成测试")
	}

	resp := PostJSON(t, BaseURL(t)+"/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, 0, resp.Code, "管理员登录失败: %s", resp.Message)

	var data LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "ADMIN", data.User.Role, "测试账号必须是管理员")

	return data.AccessToken
}

// RegisterApprovedUser 注册新用户、由管理员审批通过,返回用户Token
func RegisterApprovedUser(t *testing.T, adminToken, prefix string) (userID uint, token string) {
	t.Helper()
	base := BaseURL(t)

	email := GenerateTestEmail(prefix)
	registerResp := PostJSON(t, base+"/users/register", map[string]string{
		"name":     "集成测试用户",
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	var regData RegisterData
	require.NoError(t, json.Unmarshal(registerResp.Data, &regData))
	require.Equal(t, "PENDING", regData.Status, "新注册用户应为待审批状态")

	approveResp := PutJSON(t, fmt.Sprintf("%s/users/%d", base, regData.ID),
		map[string]string{"status": "APPROVED"}, adminToken)
	require.Equal(t, 0, approveResp.Code, "审批失败: %s", approveResp.Message)

	loginResp := PostJSON(t, base+"/users/login", map[string]string{
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))

	return regData.ID, loginData.AccessToken
}

// AddTestBook 管理员录入测试图书,返回图书ID
func AddTestBook(t *testing.T, adminToken, title string, copies int) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL(t)+"/books", map[string]interface{}{
		"title":        title,
		"author":       "测试作者",
		"genre":        "测试",
		"isbn":         GenerateTestISBN(),
		"total_copies": copies,
	}, adminToken)
	require.Equal(t, 0, resp.Code, "图书录入失败: %s", resp.Message)

	var data BookData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}
