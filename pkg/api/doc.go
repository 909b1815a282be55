// Package api serves the solver over HTTP.
//
// # Endpoints
//
//	POST   /v1/solve                                  submit two trees
//	GET    /v1/results/{id}                           job status and result
//	DELETE /v1/results/{id}                           forget a job
//	GET    /v1/results/{id}/networks/{index}/{format} one network as newick, dot, svg or png
//	GET    /healthz                                   liveness and version
//	GET    /metrics                                   Prometheus metrics
//
// A solve request is a JSON object with the two Newick trees and optional
// search options:
//
//	{"tree1": "(A,(B,C));", "tree2": "((A,B),C);", "budget": 0, "candidates": ["B"]}
//
// By default the job runs in the background and the response is 202 with the
// pending job and a Location header. With ?wait=true the request blocks until
// the search finishes and returns the finished job.
//
// Searches run under the server's timeout and at most Config.MaxJobs run at
// a time. Errors are JSON objects {"error": ..., "code": ...} with the codes
// of the errors package.
package api
