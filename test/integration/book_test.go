package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 图书模块集成测试
//
// 场景覆盖:
// 1. 管理员录入,普通用户无权录入
// 2. 公开列表与详情查询
// 3. 更新馆藏副本总数
// 4. 有借阅中记录的图书不能删除

func TestBookCRUD(t *testing.T) {
	base := BaseURL(t)
	adminToken := AdminToken(t)

	var bookID uint

	t.Run("管理员录入图书", func(t *testing.T) {
		isbn := GenerateTestISBN()
		resp := PostJSON(t, base+"/books", map[string]interface{}{
			"title":            "围城",
			"author":           "钱锺书",
			"genre":            "小说",
			"publication_year": 1947,
			"isbn":             isbn,
			"total_copies":     5,
		}, adminToken)
		require.Equal(t, 0, resp.Code, "录入失败: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotZero(t, data.ID)
		assert.Equal(t, 5, data.TotalCopies)
		assert.Equal(t, 5, data.AvailableCopies, "新书可借数应等于馆藏总数")

		bookID = data.ID
	})

	t.Run("普通用户不能录入", func(t *testing.T) {
		_, token := RegisterApprovedUser(t, adminToken, "bookuser")

		resp := PostJSON(t, base+"/books", map[string]interface{}{
			"title":        "不该成功",
			"author":       "某人",
			"total_copies": 1,
		}, token)
		assert.Equal(t, 40104, resp.Code, "普通用户录入应被拒绝")
	})

	t.Run("公开详情查询", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", base, bookID), "")
		require.Equal(t, 0, resp.Code, "详情查询失败: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "围城", data.Title)
	})

	t.Run("公开列表查询", func(t *testing.T) {
		resp := GetJSON(t, base+"/books?keyword=围城", "")
		assert.Equal(t, 0, resp.Code, "列表查询失败: %s", resp.Message)
	})

	t.Run("更新馆藏总数", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/books/%d", base, bookID),
			map[string]interface{}{"total_copies": 8}, adminToken)
		require.Equal(t, 0, resp.Code, "更新失败: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 8, data.TotalCopies)
		assert.Equal(t, 8, data.AvailableCopies, "无借出时可借数应随总数调整")
	})

	t.Run("ISBN重复录入失败", func(t *testing.T) {
		isbn := GenerateTestISBN()
		first := PostJSON(t, base+"/books", map[string]interface{}{
			"title": "图书A", "author": "作者A", "isbn": isbn, "total_copies": 1,
		}, adminToken)
		require.Equal(t, 0, first.Code)

		second := PostJSON(t, base+"/books", map[string]interface{}{
			"title": "图书B", "author": "作者B", "isbn": isbn, "total_copies": 1,
		}, adminToken)
		assert.Equal(t, 40004, second.Code, "重复ISBN应返回40004")
	})
}

func TestBookDeleteWithActiveLoan(t *testing.T) {
	base := BaseURL(t)
	adminToken := AdminToken(t)

	bookID := AddTestBook(t, adminToken, "待删除图书", 1)
	_, token := RegisterApprovedUser(t, adminToken, "deltest")

	// 借出一本
	borrowResp := PostJSON(t, base+"/transactions",
		map[string]interface{}{"book_id": bookID}, token)
	require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)

	var loanData LoanData
	require.NoError(t, json.Unmarshal(borrowResp.Data, &loanData))

	t.Run("有借阅中记录不能删除", func(t *testing.T) {
		resp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", base, bookID), adminToken)
		assert.Equal(t, 40006, resp.Code, "应返回存在未归还借阅")
	})

	t.Run("归还后可以删除", func(t *testing.T) {
		returnResp := PutJSON(t, base+"/transactions", map[string]interface{}{
			"transaction_id": loanData.ID,
			"status":         "COMPLETED",
		}, token)
		require.Equal(t, 0, returnResp.Code, "归还失败: %s", returnResp.Message)

		resp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", base, bookID), adminToken)
		assert.Equal(t, 0, resp.Code, "归还完毕后删除失败: %s", resp.Message)
	})
}
