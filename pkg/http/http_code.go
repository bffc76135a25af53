// Copyright 2025 Scenecast Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	OrgIdIsEmpty                  = failed(5002, "Org id is empty")
	UserIdIsEmpty                 = failed(5003, "User id is empty")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	InvalidToken         = failed(4405, "Invalid token")
	TokenExpired         = failed(4407, "Token is expired")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	// Forbidden 403
	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")
	OrgSuspended     = failed(4032, "Organization is suspended pending deletion")

	// Gone 410, deletion lifecycle links
	LinkInvalid      = failed(4100, "Link is invalid")
	LinkExpired      = failed(4101, "Link has expired")
	UndoWindowClosed = failed(4102, "Undo window has closed")

	InternalError = failed(5000, "Internal error, please contact the administrator")

	UserNotExist            = failed(4041, "User does not exist")
	OrgNotExist             = failed(4043, "Organization does not exist")
	MembershipNotExist      = failed(4044, "Membership does not exist")
	DeletionRequestNotExist = failed(4045, "Deletion request does not exist")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
