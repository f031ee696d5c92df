/*
Package mfasdk is a typed Go client for the Campus MFA service and the home
of the request/response types shared by the server and its callers.

Every MFA route acts on the user identified by the bearer token, so a
Client is built with a TokenSource that yields the caller's access token:

	client := mfasdk.NewClient("https://mfa.campus.example", mfasdk.StaticToken(accessToken))

	setup, err := client.Setup(ctx, mfasdk.FactorTOTP)
	// render setup.QRCode, ask the user for the first code
	codes, err := client.Enable(ctx, "123456")

	ok, err := client.Verify(ctx, "654321")

Server errors are returned as *APIError carrying the HTTP status and the
"error" / "error_description" envelope:

	var apiErr *mfasdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == mfasdk.ErrorCodeInvalidCode {
		// wrong code, let the user retry
	}

A failed verification is not an error: Verify returns (false, nil).
*/
package mfasdk
