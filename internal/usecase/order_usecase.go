package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"
)

var (
	// 存在しないfood idを参照した
	ErrInvalidReference = errors.New("invalid reference")

	// 終端ステータス以降の更新、または未知のステータス
	ErrInvalidTransition = errors.New("invalid transition")

	// ストア層の失敗（errors.Isで判定できる）
	ErrPersistence = errors.New("persistence failure")
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	customers repo.CustomerRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	customers repo.CustomerRepository,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, customers: customers}
}

// カートの1行（未計価）
type CartLine struct {
	FoodID   int64 `json:"foodId"`
	Quantity int64 `json:"quantity"`
}

type PlaceOrderInput struct {
	CustomerID    int64      `json:"userId"`
	PaymentMethod string     `json:"paymentMethod"`
	Items         []CartLine `json:"items"`
}

type ChangeStatusInput struct {
	Status string `json:"status"`
}

type OrderItemOutput struct {
	FoodID   int64  `json:"food_id"`
	FoodName string `json:"food_name"`
	Quantity int64  `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	CustomerID    int64             `json:"customer_id"`
	CustomerName  string            `json:"customer_name,omitempty"`
	MerchantID    int64             `json:"merchant_id"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	TotalPrice    int64             `json:"total_price"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// PlaceOrderは複数マーチャント混在カートをマーチャントごとの注文に分割する。
// 単価は常にカタログの現在価格。分割全体が1トランザクションで、
// どこか1グループでも失敗したら全グループをロールバックする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) ([]OrderOutput, error) {
	if in.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customer id", ErrInvalidReference)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", ErrInvalidReference)
	}
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method", ErrInvalidReference)
	}
	for _, line := range in.Items {
		if line.FoodID <= 0 || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cart line", ErrInvalidReference)
		}
	}

	var created []model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//重複を除いて一括取得
		ids := distinctFoodIDs(in.Items)

		foods, err := r.Foods().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		//1件でも解決できなければ全体を拒否する
		if len(foods) != len(ids) {
			return fmt.Errorf("%w: one or more food items not found", ErrInvalidReference)
		}

		foodByID := make(map[int64]model.Food, len(foods))
		for _, f := range foods {
			foodByID[f.ID] = f
		}

		//マーチャントごとにグルーピング（初出順を保つ）
		merchantOrder := make([]int64, 0, len(foods))
		linesByMerchant := make(map[int64][]CartLine)
		for _, line := range in.Items {
			mid := foodByID[line.FoodID].MerchantID
			if _, seen := linesByMerchant[mid]; !seen {
				merchantOrder = append(merchantOrder, mid)
			}
			linesByMerchant[mid] = append(linesByMerchant[mid], line)
		}

		//グループごとに注文＋明細を作成
		created = created[:0]
		for _, mid := range merchantOrder {
			lines := linesByMerchant[mid]

			var total int64
			items := make([]model.OrderItem, 0, len(lines))
			for _, line := range lines {
				total += foodByID[line.FoodID].Price * line.Quantity
				items = append(items, model.OrderItem{
					FoodID:   line.FoodID,
					Quantity: line.Quantity,
				})
			}

			order, err := r.Orders().CreateWithItems(ctx, model.Order{
				CustomerID:    in.CustomerID,
				MerchantID:    mid,
				PaymentMethod: in.PaymentMethod,
				Status:        model.OrderStatusPending,
				TotalPrice:    total,
				Items:         items,
			})
			if err != nil {
				return fmt.Errorf("%w: merchant %d: %w", ErrPersistence, mid, err)
			}

			created = append(created, order)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	customerName := u.lookupCustomerName(ctx, in.CustomerID)

	outs := make([]OrderOutput, 0, len(created))
	for _, o := range created {
		outs = append(outs, toOrderOutput(o, customerName))
	}
	return outs, nil
}

// ChangeStatusは要求されたステータスをそのまま書く。
// ただし終端（Completed/Cancelled）後の更新と未知の値は拒否する。
func (u *OrderUsecase) ChangeStatus(ctx context.Context, orderID int64, in ChangeStatusInput) (OrderOutput, error) {
	status := model.OrderStatus(in.Status)
	if !status.IsValid() {
		return OrderOutput{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, in.Status)
	}

	var updated model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		current, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		if current.Status.IsTerminal() {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, orderID, current.Status)
		}

		updated, err = r.Orders().UpdateStatus(ctx, orderID, status)
		if errors.Is(err, repo.ErrNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	return toOrderOutput(updated, u.lookupCustomerName(ctx, updated.CustomerID)), nil
}

// マーチャントのダッシュボード用一覧（新しい順）
func (u *OrderUsecase) ListForMerchant(ctx context.Context, merchantID int64) ([]OrderOutput, error) {
	if merchantID <= 0 {
		return nil, fmt.Errorf("%w: merchant id", ErrInvalidReference)
	}

	orders, err := u.orders.ListByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, u.lookupCustomerName(ctx, o.CustomerID)))
	}
	return outs, nil
}

// 顧客の注文履歴（新しい順、直近30件）
func (u *OrderUsecase) ListForCustomer(ctx context.Context, customerID int64) ([]OrderOutput, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id", ErrInvalidReference)
	}

	orders, err := u.orders.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, ""))
	}
	return outs, nil
}

// 表示名が取れなくても注文処理は失敗させない
func (u *OrderUsecase) lookupCustomerName(ctx context.Context, customerID int64) string {
	c, err := u.customers.FindByID(ctx, customerID)
	if err != nil {
		return ""
	}
	return c.UserName
}

func distinctFoodIDs(lines []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.FoodID]; ok {
			continue
		}
		seen[line.FoodID] = struct{}{}
		ids = append(ids, line.FoodID)
	}
	return ids
}

func toOrderOutput(o model.Order, customerName string) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			FoodID:   it.FoodID,
			FoodName: it.Food.Name,
			Quantity: it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  customerName,
		MerchantID:    o.MerchantID,
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}
