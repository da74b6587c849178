package usecase

import "time"

func SetSalesClock(u *SalesUsecase, now func() time.Time) { u.now = now }
