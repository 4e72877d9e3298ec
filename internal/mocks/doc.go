// Package mocks provides centralized mock implementations for testing.
//
// Two styles are used. Store mocks embed testify's mock.Mock so tests can
// set expectations per call:
//
//	events := &mocks.TestifyMockEventStore{}
//	events.On("LoadSessions", mock.Anything, userID).Return(sessions, nil)
//
// Service mocks use function fields with default return values, which keeps
// handler tests short:
//
//	jwtService := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
package mocks
