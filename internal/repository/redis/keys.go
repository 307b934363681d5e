package redis

import "fmt"

const ns = "seatstore:v1"

func KeyProduct(productID int64) string {
	return fmt.Sprintf("%s:product:%d", ns, productID)
}

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

func KeyEventSeatMap(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:seatmap", ns, eventID)
}

func KeyCoupon(code string) string {
	return fmt.Sprintf("%s:coupon:%s", ns, code)
}

func KeyIdemCheckout(buyerID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:checkout:%d:%s", ns, buyerID, idemKey)
}

func ChannelOrdersSettled() string {
	return ns + ":orders:settled"
}
