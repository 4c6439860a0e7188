// Package suitedef loads contract scenarios from YAML suite files.
//
// A suite file looks like this:
//
//     name: bookstore
//     baseURL: http://127.0.0.1:7081
//     timeout: 5s
//     auth: {type: basic, username: admin, password: password}
//     scenarios:
//       - name: update book
//         method: PUT
//         path: /api/books/1
//         json: {id: 1, title: A Family History, author: Vivian Gornick}
//         expect:
//           status: 200
//           jsonPath: {title: A Family History}
//       - name: update without credentials
//         method: PUT
//         path: /api/books/1
//         auth: {type: none}
//         json: {id: 1, title: A Family History, author: Vivian Gornick}
//         expect: {status: 401}
package suitedef
