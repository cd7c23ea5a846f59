package models

// AlertData asks the UI to render a modal dialog. ButtonFunc1 runs when the first button is acknowledged.
type AlertData struct {
	AlertText   string
	ButtonText1 string
	ButtonFunc1 func()
	ButtonText2 string
	ButtonFunc2 func()
}

// Acknowledge runs the callback for button 1 or 2. Other values and missing callbacks are ignored.
func (a *AlertData) Acknowledge(button int) {
	if a == nil {
		return
	}
	switch button {
	case 1:
		if a.ButtonFunc1 != nil {
			a.ButtonFunc1()
		}
	case 2:
		if a.ButtonFunc2 != nil {
			a.ButtonFunc2()
		}
	}
}
