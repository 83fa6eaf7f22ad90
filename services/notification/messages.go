package notification

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Pickup times are shown to sellers in Indian Standard Time
var displayZone = time.FixedZone("IST", 5*60*60+30*60)

func PickupScheduledMessage(pickupAt time.Time) string {
	local := pickupAt.In(displayZone)
	return fmt.Sprintf("Your Scrapy pickup has been scheduled for %s at %s. We'll be there!",
		local.Format("2 Jan 2006"), local.Format("3:04 PM"))
}

func CollectedMessage(amount decimal.Decimal) string {
	return fmt.Sprintf("Your scrap has been collected. We've initiated a payout of ₹%s. Thank you for using Scrapy!",
		amount.StringFixed(2))
}

func CancelledMessage(title string) string {
	return fmt.Sprintf("Your Scrapy listing \"%s\" has been cancelled. Contact support if this was unexpected.", title)
}
