package availability

import "time"

// FeeSchedule holds a property's pricing knobs. Amounts are cents.
type FeeSchedule struct {
	CleaningFee    int64   `json:"cleaning_fee"`
	ServiceFeeRate float64 `json:"service_fee_rate"`
	TaxRate        float64 `json:"tax_rate"`
}

// Quote is a priced stay. Amounts are cents.
type Quote struct {
	BasePrice int64 `json:"base_price"`
	Taxes     int64 `json:"taxes"`
	Fees      int64 `json:"fees"`
	Total     int64 `json:"total"`
	Nights    int   `json:"nights"`
}

// CalculateTotal prices a stay at nightlyRate for the given dates. The night
// count is the calendar-day difference between checkout and check-in; stays
// of zero or negative length are rejected.
func CalculateTotal(nightlyRate int64, checkIn, checkOut time.Time, fees FeeSchedule) (Quote, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}

	base := nightlyRate * int64(nights)
	fee := fees.CleaningFee + int64(float64(base)*fees.ServiceFeeRate+0.5)
	taxes := int64(float64(base+fee)*fees.TaxRate + 0.5)

	return Quote{
		BasePrice: base,
		Taxes:     taxes,
		Fees:      fee,
		Total:     base + fee + taxes,
		Nights:    nights,
	}, nil
}
