package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"zoneGridBot/internal/domain"
)

// WriteKlinesToCSV exports a kline window to a CSV file, oldest first.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, k := range klines {
		writer.Write([]string{
			k.OpenTime.Format(time.RFC3339),
			k.CloseTime.Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// WriteTradesToCSV exports trades to a CSV file. Exit columns are empty for
// trades still open.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"id", "zone", "status", "entry_time", "exit_time", "entry_price", "exit_price", "quantity", "pnl_usdt", "fee_usdt", "entry_rsi", "exit_rsi", "close_reason"})

	for _, t := range trades {
		exitTime, exitPrice, exitRSI, pnl := "", "", "", ""
		if !t.IsOpen() {
			exitTime = t.ExitAt.Format(time.RFC3339)
			exitPrice = strconv.FormatFloat(t.ExitPrice, 'f', -1, 64)
			exitRSI = strconv.FormatFloat(t.ExitRSI, 'f', -1, 64)
			pnl = strconv.FormatFloat(t.PnLUSDT, 'f', -1, 64)
		}
		writer.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.ZoneName,
			string(t.Status),
			t.CreatedAt.Format(time.RFC3339),
			exitTime,
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			exitPrice,
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			pnl,
			strconv.FormatFloat(t.FeeUSDT, 'f', -1, 64),
			strconv.FormatFloat(t.EntryRSI, 'f', -1, 64),
			exitRSI,
			string(t.CloseReason),
		})
	}
	return writer.Error()
}
