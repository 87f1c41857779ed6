package shop

import (
	"net/http"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// ItemResponse 是商品的API响应模型
type ItemResponse struct {
	ID              string    `json:"id"`
	ItemName        string    `json:"itemName"`
	ItemType        string    `json:"itemType"`
	ItemColor       string    `json:"itemColor"`
	ItemCost        int       `json:"itemCost"`
	ItemDescription *string   `json:"itemDescription"`
	IsOwned         bool      `json:"isOwned"`
	CreatedAt       time.Time `json:"createdAt"`
}

func formatItem(item *ShopItem) ItemResponse {
	return ItemResponse{
		ID:              item.ItemID,
		ItemName:        item.ItemName,
		ItemType:        item.ItemType,
		ItemColor:       item.ItemColor,
		ItemCost:        item.ItemCost,
		ItemDescription: item.ItemDescription,
		IsOwned:         item.IsOwned,
		CreatedAt:       item.CreatedAt,
	}
}

type createItemRequest struct {
	ItemName        string  `json:"itemName" binding:"required"`
	ItemType        string  `json:"itemType" binding:"required"`
	ItemColor       string  `json:"itemColor" binding:"required"`
	ItemCost        int     `json:"itemCost" binding:"required,gt=0"`
	ItemDescription *string `json:"itemDescription"`
}

// CreateShopItem 创建一个新商品
func CreateShopItem(c *gin.Context) {
	var body createItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	item, err := Create(user.CurrentUserID(c), CreateInput{
		ItemName:        body.ItemName,
		ItemType:        body.ItemType,
		ItemColor:       body.ItemColor,
		ItemCost:        body.ItemCost,
		ItemDescription: body.ItemDescription,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, formatItem(item))
}

// ListShopItems 返回当前用户目录下的全部商品
func ListShopItems(c *gin.Context) {
	items, err := List(user.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取商品列表失败"})
		return
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = formatItem(&items[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetShopItem 根据ID返回单个商品
func GetShopItem(c *gin.Context) {
	item, err := Get(user.CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatItem(item))
}

// PurchaseShopItem 购买一个商品：扣减积分并标记为已拥有
func PurchaseShopItem(c *gin.Context) {
	item, err := Purchase(user.CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatItem(item))
}

// DeleteShopItem 删除一个商品
func DeleteShopItem(c *gin.Context) {
	if err := Delete(user.CurrentUserID(c), c.Param("id")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "商品已删除"})
}
