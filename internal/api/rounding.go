package api

import (
	"github.com/shopspring/decimal"

	"jamlo/internal/model"
	"jamlo/internal/service/calculator"
)

const (
	amountPlaces = 2
	ratioPlaces  = 4
)

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundRooms(k calculator.RoomsKPI) calculator.RoomsKPI {
	k.AvailableRooms = round(k.AvailableRooms, amountPlaces)
	k.SoldRoomNights = round(k.SoldRoomNights, amountPlaces)
	k.Occupancy = round(k.Occupancy, ratioPlaces)
	k.RevPOR = round(k.RevPOR, amountPlaces)
	k.RoomRevenue = round(k.RoomRevenue, amountPlaces)
	k.DepartmentalCost = round(k.DepartmentalCost, amountPlaces)
	k.Result = round(k.Result, amountPlaces)
	k.CostPerSoldRoom = round(k.CostPerSoldRoom, amountPlaces)
	if k.CostBreakdown != nil {
		breakdown := make(map[model.CostGroup]float64, len(k.CostBreakdown))
		for g, v := range k.CostBreakdown {
			breakdown[g] = round(v, amountPlaces)
		}
		k.CostBreakdown = breakdown
	}
	return k
}

func roundFnB(k calculator.FnBKPI) calculator.FnBKPI {
	k.Revenue = round(k.Revenue, amountPlaces)
	k.RawCost = round(k.RawCost, amountPlaces)
	k.Cost = round(k.Cost, amountPlaces)
	k.Result = round(k.Result, amountPlaces)
	return k
}

// roundSummary 展示用舍入：金额 2 位，比率 4 位
func roundSummary(s calculator.Summary) calculator.Summary {
	s.Rooms = roundRooms(s.Rooms)
	s.RoomsYTD = roundRooms(s.RoomsYTD)
	s.FnB = roundFnB(s.FnB)
	s.FnBYTD = roundFnB(s.FnBYTD)
	s.OtherRevenue = round(s.OtherRevenue, amountPlaces)
	s.OtherRevenueYTD = round(s.OtherRevenueYTD, amountPlaces)
	return s
}
