package common

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "tegenaria_session"

// FlashCookieName is the cookie that carries the signed one-shot message
// shown after a redirect.
const FlashCookieName = "tegenaria_flash"

// ApartmentTableClasses are the CSS classes attached to the apartment table.
var ApartmentTableClasses = []string{"table-bordered", "table-striped"}
